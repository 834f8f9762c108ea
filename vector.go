// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import (
	"fmt"
	"iter"
	"unsafe"
)

// Vector is a fixed-length array of independently versioned slots.
//
// Each index behaves like its own [Seqlock]: writes to one index never
// disturb readers of another, and a read of one index is a consistent
// snapshot of that index only. There is no snapshot of the whole vector.
//
// Unlike [Queue], the length need not be a power of two.
//
// Memory: one region of [VectorSize] bytes, header followed by the slots.
type Vector[T any] struct {
	base     unsafe.Pointer
	length   uintptr
	slotSize uintptr
	region   Region
}

func checkVectorParams[T any](length int, strict bool) error {
	if length < 1 || length > maxSlots[T]() {
		return ErrInvalidLength
	}
	if hasPointers[T]() {
		return ErrPointerPayload
	}
	if strict && !isPow2(uint64(slotSize[T]())) {
		return ErrElementSizeNotPowerOfTwo
	}
	return nil
}

// NewVector allocates a zeroed vector of the given length in private memory.
//
// Every index reads as the zero T until written.
func NewVector[T any](length int) (*Vector[T], error) {
	return newVector[T](length, false)
}

func newVector[T any](length int, strict bool) (*Vector[T], error) {
	if err := checkVectorParams[T](length, strict); err != nil {
		return nil, err
	}
	base := allocZeroed(uintptr(VectorSize[T](length)))
	return initVector[T](base, length), nil
}

// VectorFromBytes initializes a vector inside buf.
//
// buf must be zero-filled, 8-byte aligned and at least [VectorSize] bytes,
// such as a freshly created shared-memory region.
func VectorFromBytes[T any](buf []byte, length int) (*Vector[T], error) {
	if err := checkVectorParams[T](length, false); err != nil {
		return nil, err
	}
	base, err := baseOf(buf, uintptr(VectorSize[T](length)))
	if err != nil {
		return nil, err
	}
	return initVector[T](base, length), nil
}

func initVector[T any](base unsafe.Pointer, length int) *Vector[T] {
	size := slotSize[T]()
	h := headerAt(base)
	h.elemSize = uint32(size)
	h.length = uint64(length)
	h.publish(KindVector)
	return &Vector[T]{base: base, length: uintptr(length), slotSize: size}
}

// AttachVector reattaches to a vector previously initialized in buf,
// trusting the length stored in its header.
//
// length is the caller's expectation: it fails with [ErrRegionTooSmall] if
// larger than the stored length. Zero skips the check.
func AttachVector[T any](buf []byte, length int) (*Vector[T], error) {
	if hasPointers[T]() {
		return nil, ErrPointerPayload
	}
	base, err := baseOf(buf, headerSize)
	if err != nil {
		return nil, err
	}
	h := headerAt(base)
	kind, ok := h.load()
	if !ok {
		return nil, ErrUninitialized
	}
	if kind != KindVector {
		return nil, ErrKindMismatch
	}
	size := slotSize[T]()
	if uintptr(h.elemSize) != size {
		return nil, ErrElementSizeMismatch
	}
	if h.length > uint64(maxSlots[T]()) {
		return nil, ErrRegionTooSmall
	}
	stored := uintptr(h.length)
	if uintptr(length) > stored {
		return nil, ErrRegionTooSmall
	}
	if _, err := baseOf(buf, headerSize+stored*size); err != nil {
		return nil, err
	}
	return &Vector[T]{base: base, length: stored, slotSize: size}, nil
}

// Len returns the number of slots.
func (v *Vector[T]) Len() int {
	return int(v.length)
}

func (v *Vector[T]) slot(i int) *Seqlock[T] {
	return slotAt[T](v.base, v.slotSize, uintptr(i))
}

func (v *Vector[T]) check(i int) {
	if uint(i) >= uint(v.length) {
		panic(fmt.Sprintf("icc: index %d out of range [0:%d]", i, v.length))
	}
}

// Write stores *val at index i.
// Panics if i is out of range. One writer per index at a time.
func (v *Vector[T]) Write(i int, val *T) {
	v.check(i)
	v.slot(i).Write(val)
}

// WriteUnchecked is Write without the bounds check.
func (v *Vector[T]) WriteUnchecked(i int, val *T) {
	v.slot(i).Write(val)
}

// Read copies a consistent snapshot of index i into out.
// Panics if i is out of range.
func (v *Vector[T]) Read(i int, out *T) {
	v.check(i)
	v.slot(i).Read(out)
}

// ReadUnchecked is Read without the bounds check.
func (v *Vector[T]) ReadUnchecked(i int, out *T) {
	v.slot(i).Read(out)
}

// ReadCopy returns a consistent snapshot of index i.
// Panics if i is out of range.
func (v *Vector[T]) ReadCopy(i int) T {
	v.check(i)
	return v.slot(i).Load()
}

// ReadCopyUnchecked is ReadCopy without the bounds check.
func (v *Vector[T]) ReadCopyUnchecked(i int) T {
	return v.slot(i).Load()
}

// Values returns an iterator over snapshots of every index in order.
//
// Each element is read when the iterator reaches it, so the sequence is
// not a snapshot of the vector as a whole. Ranging over the iterator again
// starts over from index 0.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range v.Len() {
			if !yield(v.slot(i).Load()) {
				return
			}
		}
	}
}

// All is Values with indices.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range v.Len() {
			if !yield(i, v.slot(i).Load()) {
				return
			}
		}
	}
}

// Stats returns the vector's header description.
func (v *Vector[T]) Stats() Stats {
	return Stats{Kind: KindVector, Len: v.Len(), ElemSize: int(v.slotSize)}
}

// Close releases the backing region if the vector was created through a
// [Provider]. The vector must not be used afterwards.
func (v *Vector[T]) Close() error {
	r := v.region
	v.region = nil
	return closeRegion(r)
}
