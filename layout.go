// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import (
	"math"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// header sits at offset 0 of every Vector and Queue region.
//
// Layout (24 bytes, little-endian hosts):
//
//	offset 0:  kind tag        (1 byte)  ┐
//	offset 1:  initialized     (1 byte)  ├ meta word, published with release
//	offset 2:  padding         (2 bytes) ┘
//	offset 4:  element size    (4 bytes) slot size, version word included
//	offset 8:  length          (8 bytes) queue: capacity-1, vector: length
//	offset 16: count           (8 bytes) queue production counter
//
// Slots follow at offset 24 with no gap. Their address is always derived
// from the region base, never stored in the header.
//
// Bytes 0-3 are accessed as one int32, so the kind tag lands in byte 0 and
// the initialized flag in byte 1 only on little-endian hosts. Big-endian
// targets are not supported; TestHostLittleEndian fails on them.
type header struct {
	meta     atomix.Int32
	elemSize uint32
	length   uint64
	count    atomix.Uint64
}

const headerSize = unsafe.Sizeof(header{})

// Compile-time layout assertions.
var _ [24 - headerSize]byte
var _ [headerSize - 24]byte

const initializedBit = 1 << 8

func headerAt(base unsafe.Pointer) *header {
	return (*header)(base)
}

// load returns the kind tag and initialized flag in one acquire load.
func (h *header) load() (Kind, bool) {
	m := h.meta.LoadAcquire()
	return Kind(m & 0xff), m&initializedBit != 0
}

// publish marks the header initialized. Every other header field must be
// written before publish.
func (h *header) publish(k Kind) {
	h.meta.StoreRelease(int32(k) | initializedBit)
}

func slotSize[T any]() uintptr {
	var s Seqlock[T]
	return unsafe.Sizeof(s)
}

// maxSlots is the largest slot count whose region size fits in an int.
func maxSlots[T any]() int {
	return int((uintptr(math.MaxInt) - headerSize) / slotSize[T]())
}

// slotAt returns slot i of a region. No bounds check.
func slotAt[T any](base unsafe.Pointer, size, i uintptr) *Seqlock[T] {
	return (*Seqlock[T])(unsafe.Add(base, headerSize+i*size))
}

// QueueSize returns the region size in bytes for a queue of the given
// length. The length is rounded up to a power of two first.
func QueueSize[T any](length int) int {
	return int(headerSize + uintptr(roundToPow2(length))*slotSize[T]())
}

// VectorSize returns the region size in bytes for a vector of the given
// length.
func VectorSize[T any](length int) int {
	if length < 0 {
		length = 0
	}
	return int(headerSize + uintptr(length)*slotSize[T]())
}

// allocZeroed returns cache-line aligned zeroed memory of at least size
// bytes. The backing array is word-typed so that it is 8-byte aligned and
// never scanned by the garbage collector.
func allocZeroed(size uintptr) unsafe.Pointer {
	words := (size + cacheLineSize + 7) / 8
	buf := make([]uint64, words)
	p := unsafe.Pointer(unsafe.SliceData(buf))
	off := (cacheLineSize - uintptr(p)%cacheLineSize) % cacheLineSize
	return unsafe.Add(p, off)
}

// baseOf validates buf as a region of at least need bytes.
func baseOf(buf []byte, need uintptr) (unsafe.Pointer, error) {
	if uintptr(len(buf)) < need || len(buf) == 0 {
		return nil, ErrRegionTooSmall
	}
	p := unsafe.Pointer(unsafe.SliceData(buf))
	if uintptr(p)%8 != 0 {
		return nil, ErrMisaligned
	}
	return p, nil
}

// Inspect reads the header of a region without knowing its payload type.
func Inspect(buf []byte) (Stats, error) {
	base, err := baseOf(buf, headerSize)
	if err != nil {
		return Stats{}, err
	}
	h := headerAt(base)
	kind, ok := h.load()
	if !ok {
		return Stats{}, ErrUninitialized
	}
	st := Stats{Kind: kind, ElemSize: int(h.elemSize)}
	switch {
	case kind == KindVector:
		st.Len = int(h.length)
	case kind.isQueue():
		st.Len = int(h.length + 1)
		st.Produced = h.count.LoadRelaxed()
	default:
		return Stats{}, ErrKindMismatch
	}
	return st, nil
}
