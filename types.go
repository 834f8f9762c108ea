// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import "golang.org/x/sys/cpu"

// Kind tags a region with the structure living in it and, for queues, the
// producer discipline.
//
// The tag is stored in the first byte of every region header, so the
// numeric values are part of the shared-memory layout and must not change.
type Kind uint8

const (
	// KindUnknown marks a zeroed, never initialized region.
	KindUnknown Kind = iota

	// KindMPMC is a queue whose producers claim positions with fetch-and-add.
	// Any number of goroutines or processes may produce concurrently.
	KindMPMC

	// KindSPMC is a queue whose single producer claims positions with a
	// plain load and store. Cheaper than MPMC; undefined behavior with more
	// than one producer.
	KindSPMC

	// KindVector marks a Vector region.
	KindVector
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMPMC:
		return "MPMC"
	case KindSPMC:
		return "SPMC"
	case KindVector:
		return "Vector"
	default:
		return "Unknown"
	}
}

// isQueue reports whether k is a queue discipline.
func (k Kind) isQueue() bool {
	return k == KindMPMC || k == KindSPMC
}

// Stats describes a region as recorded in its header.
//
// Produced is a relaxed snapshot of the queue production counter; reading it
// from a non-producer core pulls the producer's cache line, so sample it
// sparingly. Always zero for vectors.
type Stats struct {
	Kind     Kind
	Len      int // queue capacity or vector length
	ElemSize int // bytes per slot, version word included
	Produced uint64
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

func isPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// cacheLineSize is the alignment of private allocations.
const cacheLineSize = 64

// pad is cache line padding to prevent false sharing.
type pad = cpu.CacheLinePad
