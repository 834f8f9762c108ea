// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import (
	"errors"
	"fmt"
	"io/fs"
)

// Region is a contiguous byte range, typically memory shared between
// processes. The containers only reinterpret the bytes; the region's
// lifetime is independent of theirs and it may be reattached across process
// restarts.
type Region interface {
	// Bytes returns the mapped memory. It must stay valid until Close.
	Bytes() []byte

	// Close releases this process's mapping. The underlying region survives.
	Close() error
}

// Provider creates and opens named regions.
//
// Create must return a zero-filled region of at least size bytes and fail
// with an error wrapping [fs.ErrExist] when the name is taken. Open must
// fail with an error wrapping [fs.ErrNotExist] for an unknown name, and
// with one wrapping [ErrUninitialized] for a name whose creator has not
// sized it yet.
//
// See package code.hybscloud.com/icc/shm for implementations.
type Provider interface {
	Create(name string, size int) (Region, error)
	Open(name string) (Region, error)
}

// CreateQueue creates a named shared queue, or attaches to it when a region
// with that name already exists.
//
// When attaching, the stored capacity and kind win over length and kind.
//
// Creation and initialization are not one atomic step. A caller racing
// another process that has just created the region may attach before the
// header is published and get [ErrUninitialized]. That outcome is
// transient: retry after a short backoff.
func CreateQueue[T any](p Provider, name string, length int, kind Kind) (*Queue[T], error) {
	return createQueue[T](p, name, length, kind, false)
}

func createQueue[T any](p Provider, name string, length int, kind Kind, strict bool) (*Queue[T], error) {
	if err := checkQueueParams[T](length, kind, strict); err != nil {
		return nil, err
	}
	r, err := p.Create(name, QueueSize[T](length))
	if errors.Is(err, fs.ErrExist) {
		return OpenQueue[T](p, name)
	}
	if err != nil {
		return nil, fmt.Errorf("icc: create queue %q: %w", name, err)
	}
	q, err := QueueFromBytes[T](r.Bytes(), roundToPow2(length), kind)
	if err != nil {
		r.Close()
		return nil, err
	}
	q.region = r
	return q, nil
}

// OpenQueue attaches to an existing named queue.
func OpenQueue[T any](p Provider, name string) (*Queue[T], error) {
	r, err := p.Open(name)
	if err != nil {
		return nil, fmt.Errorf("icc: open queue %q: %w", name, err)
	}
	q, err := AttachQueue[T](r.Bytes())
	if err != nil {
		r.Close()
		return nil, err
	}
	q.region = r
	return q, nil
}

// CreateVector creates a named shared vector, or attaches to it when a
// region with that name already exists. Attaching fails with
// [ErrRegionTooSmall] when the stored vector is shorter than length.
//
// As with [CreateQueue], [ErrUninitialized] while racing a concurrent
// creator is transient and worth retrying.
func CreateVector[T any](p Provider, name string, length int) (*Vector[T], error) {
	return createVector[T](p, name, length, false)
}

func createVector[T any](p Provider, name string, length int, strict bool) (*Vector[T], error) {
	if err := checkVectorParams[T](length, strict); err != nil {
		return nil, err
	}
	r, err := p.Create(name, VectorSize[T](length))
	if errors.Is(err, fs.ErrExist) {
		return OpenVector[T](p, name, length)
	}
	if err != nil {
		return nil, fmt.Errorf("icc: create vector %q: %w", name, err)
	}
	v, err := VectorFromBytes[T](r.Bytes(), length)
	if err != nil {
		r.Close()
		return nil, err
	}
	v.region = r
	return v, nil
}

// OpenVector attaches to an existing named vector. A length of 0 accepts
// whatever length is stored.
func OpenVector[T any](p Provider, name string, length int) (*Vector[T], error) {
	r, err := p.Open(name)
	if err != nil {
		return nil, fmt.Errorf("icc: open vector %q: %w", name, err)
	}
	v, err := AttachVector[T](r.Bytes(), length)
	if err != nil {
		r.Close()
		return nil, err
	}
	v.region = r
	return v, nil
}

func closeRegion(r Region) error {
	if r == nil {
		return nil
	}
	return r.Close()
}
