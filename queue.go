// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Queue is a broadcast ring buffer of versioned slots.
//
// Producers claim monotonically increasing logical positions from a shared
// counter and write slot position&mask. Consumers keep private cursors and
// never remove anything: every consumer that keeps up sees every value,
// and a consumer that falls a full lap behind observes [ErrSpedPast]
// instead of overwritten data. Producers never wait for consumers.
//
// The discipline decides how a position is claimed:
//
//	KindMPMC: fetch-and-add on the counter, any number of producers
//	KindSPMC: plain load and store, exactly one producer
//
// Slot versions double as generation numbers: the slot for logical position
// p holds version (p/capacity)*2 + 2 once written.
//
// Memory: one region of [QueueSize] bytes, header followed by capacity slots.
type Queue[T any] struct {
	base     unsafe.Pointer
	hdr      *header
	mask     uint64
	capacity uint64
	slotSize uintptr
	kind     Kind
	region   Region
}

func checkQueueParams[T any](length int, kind Kind, strict bool) error {
	if length < 1 || length > maxSlots[T]()/2 {
		return ErrInvalidLength
	}
	if !kind.isQueue() {
		return ErrInvalidKind
	}
	if hasPointers[T]() {
		return ErrPointerPayload
	}
	if strict && !isPow2(uint64(slotSize[T]())) {
		return ErrElementSizeNotPowerOfTwo
	}
	return nil
}

// NewQueue allocates a queue in private memory.
// Capacity rounds up to the next power of 2 (minimum 2).
func NewQueue[T any](length int, kind Kind) (*Queue[T], error) {
	return newQueue[T](length, kind, false)
}

func newQueue[T any](length int, kind Kind, strict bool) (*Queue[T], error) {
	if err := checkQueueParams[T](length, kind, strict); err != nil {
		return nil, err
	}
	n := roundToPow2(length)
	base := allocZeroed(uintptr(QueueSize[T](n)))
	return initQueue[T](base, uint64(n), kind), nil
}

// QueueFromBytes initializes a queue inside buf.
//
// length must be a power of two. buf must be zero-filled, 8-byte aligned and
// at least [QueueSize] bytes, such as a freshly created shared-memory region.
func QueueFromBytes[T any](buf []byte, length int, kind Kind) (*Queue[T], error) {
	if err := checkQueueParams[T](length, kind, false); err != nil {
		return nil, err
	}
	if !isPow2(uint64(length)) {
		return nil, ErrLengthNotPowerOfTwo
	}
	base, err := baseOf(buf, uintptr(QueueSize[T](length)))
	if err != nil {
		return nil, err
	}
	return initQueue[T](base, uint64(length), kind), nil
}

func initQueue[T any](base unsafe.Pointer, n uint64, kind Kind) *Queue[T] {
	h := headerAt(base)
	h.elemSize = uint32(slotSize[T]())
	h.length = n - 1
	h.count.StoreRelaxed(0)
	h.publish(kind)
	return newQueueView[T](base, n, kind)
}

func newQueueView[T any](base unsafe.Pointer, n uint64, kind Kind) *Queue[T] {
	return &Queue[T]{
		base:     base,
		hdr:      headerAt(base),
		mask:     n - 1,
		capacity: n,
		slotSize: slotSize[T](),
		kind:     kind,
	}
}

// AttachQueue reattaches to a queue previously initialized in buf.
// Capacity and discipline are taken from the stored header.
func AttachQueue[T any](buf []byte) (*Queue[T], error) {
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
	if !kind.isQueue() {
		return nil, ErrKindMismatch
	}
	n := h.length + 1
	if !isPow2(n) {
		return nil, ErrLengthNotPowerOfTwo
	}
	if n > uint64(maxSlots[T]()) {
		return nil, ErrRegionTooSmall
	}
	size := slotSize[T]()
	if uintptr(h.elemSize) != size {
		return nil, ErrElementSizeMismatch
	}
	if _, err := baseOf(buf, headerSize+uintptr(n)*size); err != nil {
		return nil, err
	}
	return newQueueView[T](base, n, kind), nil
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return int(q.capacity)
}

// Kind returns the producer discipline.
func (q *Queue[T]) Kind() Kind {
	return q.kind
}

// Count returns the number of positions claimed so far.
// Reading it from a consumer core contends with producers; sample sparingly.
func (q *Queue[T]) Count() uint64 {
	return q.hdr.count.LoadRelaxed()
}

// Stats returns the queue's header description.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Kind:     q.kind,
		Len:      q.Cap(),
		ElemSize: int(q.slotSize),
		Produced: q.Count(),
	}
}

// Close releases the backing region if the queue was created through a
// [Provider]. Neither the queue nor its handles may be used afterwards.
func (q *Queue[T]) Close() error {
	r := q.region
	q.region = nil
	return closeRegion(r)
}

func (q *Queue[T]) slot(i uint64) *Seqlock[T] {
	return slotAt[T](q.base, q.slotSize, uintptr(i))
}

func (q *Queue[T]) claim() uint64 {
	if q.kind == KindSPMC {
		c := q.hdr.count.LoadRelaxed()
		q.hdr.count.StoreRelaxed(c + 1)
		return c
	}
	return q.hdr.count.AddAcqRel(1) - 1
}

// Producer returns a producer handle.
func (q *Queue[T]) Producer() *Producer[T] {
	return &Producer[T]{q: q}
}

// Consumer returns a consumer that starts at the current production count:
// it sees values produced after this call.
func (q *Queue[T]) Consumer() *Consumer[T] {
	c := &Consumer[T]{q: q, mask: q.mask}
	c.seek(q.hdr.count.LoadAcquire())
	return c
}

// Producer writes into a [Queue].
//
// A Producer has no position of its own; it claims one from the queue on
// every call. Handles are cheap and may be created per goroutine. For
// [KindSPMC] queues all production must come from a single goroutine.
type Producer[T any] struct {
	q *Queue[T]
}

// Produce writes *v into the next logical position and returns that
// position. Never blocks and never fails; a slot still unread by a slow
// consumer is overwritten.
func (p *Producer[T]) Produce(v *T) uint64 {
	pos := p.q.claim()
	p.q.slot(pos & p.q.mask).Write(v)
	return pos
}

// Consumer reads from a [Queue] with a private cursor.
//
// A Consumer is owned by one goroutine. Independent consumers of the same
// queue never affect each other.
type Consumer[T any] struct {
	_        pad
	pos      uint64 // physical index, pos <= mask
	mask     uint64
	expected uint64 // version of slot pos for the current lap
	q        *Queue[T]
	_        pad
}

func (c *Consumer[T]) seek(count uint64) {
	c.pos = count & c.mask
	c.expected = (count/(c.mask+1))*2 + 2
}

func (c *Consumer[T]) advance() {
	c.pos = (c.pos + 1) & c.mask
	if c.pos == 0 {
		c.expected += 2
	}
}

// TryConsume reads the value at the cursor into out (non-blocking).
//
// Returns:
//
//	nil          out holds the value, cursor advanced
//	ErrEmpty     nothing produced at the cursor yet, cursor unchanged
//	ErrSpedPast  the slot was overwritten a lap later, cursor advanced
//
// out must not be used unless nil is returned.
func (c *Consumer[T]) TryConsume(out *T) error {
	err := c.q.slot(c.pos).ReadWithVersion(out, c.expected)
	if err == ErrEmpty {
		return err
	}
	c.advance()
	return err
}

// Consume waits for the value at the cursor, backing off while the queue is
// empty. It returns early with [ErrClosed] once done is set, and with
// [ErrSpedPast] like TryConsume. done may be nil.
func (c *Consumer[T]) Consume(out *T, done *atomix.Bool) error {
	backoff := iox.Backoff{}
	for {
		err := c.TryConsume(out)
		if err != ErrEmpty {
			return err
		}
		if done != nil && done.LoadAcquire() {
			return ErrClosed
		}
		backoff.Wait()
	}
}

// Position returns the logical position the consumer reads next.
func (c *Consumer[T]) Position() uint64 {
	return (c.expected-2)/2*(c.mask+1) + c.pos
}

// Resync moves the cursor to the queue's current production count,
// skipping everything not yet read. Typically called after ErrSpedPast.
func (c *Consumer[T]) Resync() {
	c.seek(c.q.hdr.count.LoadAcquire())
}

// Lag returns how many produced positions the consumer has not read yet.
// More than Cap means data was lost.
func (c *Consumer[T]) Lag() uint64 {
	count := c.q.hdr.count.LoadAcquire()
	pos := c.Position()
	if count <= pos {
		return 0
	}
	return count - pos
}
