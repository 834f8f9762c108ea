// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Seqlock is a versioned single-slot container.
//
// Writes never block. Reads are optimistic: the payload is copied and then
// validated against the version word, retrying when a write overlapped the
// copy. The version is even while the payload is quiescent and odd while a
// write is in progress; every completed write advances it by 2.
//
// The payload is copied while a writer may be storing into it. A read may
// therefore observe torn bytes on an individual attempt, which is why T
// must be plain data without pointers: a torn pointer would be visible to
// the garbage collector. Containers in this package reject such types at
// construction; a Seqlock used directly must respect the same rule.
//
// Layout (no hidden fields, relied upon by shared-memory regions):
//
//	offset 0: version (8 bytes)
//	offset 8: payload T
//
// The zero value is ready to use and holds the zero T at version 0.
//
// Write is single-writer: callers serialize writers to the same Seqlock.
// Any number of readers may run concurrently with the writer.
type Seqlock[T any] struct {
	version atomix.Uint64
	payload T
}

// NewSeqlock creates a Seqlock holding v.
// Panics if T contains pointers.
func NewSeqlock[T any](v T) *Seqlock[T] {
	if hasPointers[T]() {
		panic("icc: Seqlock payload must not contain pointers")
	}
	return &Seqlock[T]{payload: v}
}

// Write stores *v. Never blocks.
func (s *Seqlock[T]) Write(v *T) {
	ver := s.version.AddAcqRel(1) // odd: write in progress
	s.payload = *v
	s.version.StoreRelease(ver + 1)
}

// Read copies a consistent snapshot into out.
//
// The copy is retried until the version observed before and after it is the
// same even value. Under a writer that never pauses, Read may retry without
// bound. out holds garbage until Read returns.
func (s *Seqlock[T]) Read(out *T) {
	for {
		v1 := s.version.LoadAcquire()
		*out = s.payload
		v2 := s.settled()
		if v1 == v2 && v1&1 == 0 {
			return
		}
	}
}

// PessimisticRead is Read, but waits for the version to turn even before
// copying. Higher minimum latency, fewer wasted copies under contention.
func (s *Seqlock[T]) PessimisticRead(out *T) {
	sw := spin.Wait{}
	for {
		v1 := s.version.LoadAcquire()
		if v1&1 != 0 {
			sw.Once()
			continue
		}
		*out = s.payload
		if s.settled() == v1 {
			return
		}
		sw.Once()
	}
}

// ReadWithVersion copies the payload only if the slot holds exactly the
// expected version.
//
// It waits while a write is in progress, then compares the even version
// against expected:
//
//	version == expected → nil, out holds the value
//	version <  expected → ErrEmpty, generation not produced yet
//	version >  expected → ErrSpedPast, generation already overwritten
//
// When an error is returned out may hold a torn copy from an overlapped
// attempt and must not be used.
func (s *Seqlock[T]) ReadWithVersion(out *T, expected uint64) error {
	sw := spin.Wait{}
	for {
		v1 := s.version.LoadAcquire()
		if v1&1 != 0 {
			sw.Once()
			continue
		}
		if v1 < expected {
			return ErrEmpty
		}
		if v1 > expected {
			return ErrSpedPast
		}
		*out = s.payload
		if s.settled() == v1 {
			return nil
		}
		sw.Once()
	}
}

// settled loads the version after a payload copy. The acquire barrier
// keeps the copy's loads from completing after the version load.
func (s *Seqlock[T]) settled() uint64 {
	atomix.BarrierAcquire()
	return s.version.LoadAcquire()
}

// Load returns a consistent snapshot of the payload.
func (s *Seqlock[T]) Load() T {
	var v T
	s.Read(&v)
	return v
}

// Version returns the current version word.
// Odd means a write is in progress.
func (s *Seqlock[T]) Version() uint64 {
	return s.version.LoadAcquire()
}
