// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

// Options configures container creation.
type Options struct {
	// Producer constraint (selects the queue discipline)
	singleProducer bool

	// Reject slot sizes that are not a power of two
	strictElemSize bool

	// Named shared region; private memory when provider is nil
	provider Provider
	name     string

	// Queue: rounds up to next power of 2. Vector: exact.
	length int
}

// Builder creates queues and vectors with fluent configuration.
//
// Example:
//
//	// Private MPMC queue (default discipline)
//	q, err := icc.BuildQueue[Tick](icc.New(1024))
//
//	// Single producer, shared with other processes
//	q, err := icc.BuildQueue[Tick](icc.New(1024).SingleProducer().Shared(dir, "ticks"))
//
//	// Shared vector of the latest quote per instrument
//	v, err := icc.BuildVector[Quote](icc.New(500).Shared(dir, "quotes"))
type Builder struct {
	opts Options
}

// New creates a builder for containers of the given length.
//
// For queues the length rounds up to the next power of 2, e.g. 1000 becomes
// 1024. Vectors use it as is.
//
// Panics if length < 1.
func New(length int) *Builder {
	if length < 1 {
		panic("icc: length must be >= 1")
	}
	return &Builder{opts: Options{length: length}}
}

// SingleProducer declares that only one goroutine (or process) will
// produce. Selects [KindSPMC]. Ignored by BuildVector.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// Shared places the container in the region called name, creating it
// through p or attaching to it when it already exists.
func (b *Builder) Shared(p Provider, name string) *Builder {
	b.opts.provider = p
	b.opts.name = name
	return b
}

// StrictElementSize makes construction fail with
// [ErrElementSizeNotPowerOfTwo] unless the slot size (payload plus 8-byte
// version) is a power of two. Power-of-two slots never straddle more cache
// lines than necessary.
func (b *Builder) StrictElementSize() *Builder {
	b.opts.strictElemSize = true
	return b
}

// Kind returns the queue discipline the builder selects.
func (b *Builder) Kind() Kind {
	if b.opts.singleProducer {
		return KindSPMC
	}
	return KindMPMC
}

// BuildQueue creates a Queue[T].
//
// Discipline selection:
//
//	SingleProducer → KindSPMC (plain counter increment)
//	default        → KindMPMC (fetch-and-add)
//
// With Shared, an existing region keeps its stored capacity and discipline.
func BuildQueue[T any](b *Builder) (*Queue[T], error) {
	o := b.opts
	if o.provider != nil {
		return createQueue[T](o.provider, o.name, o.length, b.Kind(), o.strictElemSize)
	}
	return newQueue[T](o.length, b.Kind(), o.strictElemSize)
}

// BuildVector creates a Vector[T].
//
// With Shared, an existing region is reattached and must be at least as
// long as the builder's length.
func BuildVector[T any](b *Builder) (*Vector[T], error) {
	o := b.opts
	if o.provider != nil {
		return createVector[T](o.provider, o.name, o.length, o.strictElemSize)
	}
	return newVector[T](o.length, o.strictElemSize)
}
