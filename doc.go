// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package icc provides versioned, lock-free containers for inter-core and
// inter-process communication.
//
// Three structures are built from the same slot:
//
//   - Seqlock: a single value with wait-free writes and optimistic reads
//   - Vector:  a fixed-length array of independently versioned slots
//   - Queue:   a power-of-two broadcast ring with Producer and Consumer handles
//
// # Quick Start
//
//	q, _ := icc.NewQueue[Tick](1024, icc.KindMPMC)
//	p := q.Producer()
//	c := q.Consumer()
//
//	p.Produce(&tick)
//
//	var got Tick
//	switch err := c.TryConsume(&got); {
//	case err == nil:
//	    handle(got)
//	case icc.IsEmpty(err):
//	    // nothing new, retry later
//	case icc.IsSpedPast(err):
//	    // lapped by the producer, data lost
//	    c.Resync()
//	}
//
// Builder API:
//
//	q, _ := icc.BuildQueue[Tick](icc.New(1024))                      // → KindMPMC
//	q, _ := icc.BuildQueue[Tick](icc.New(1024).SingleProducer())     // → KindSPMC
//	v, _ := icc.BuildVector[Quote](icc.New(500).Shared(dir, "quotes"))
//
// # Seqlock Protocol
//
// Every slot carries a version word. A writer bumps it to odd, copies the
// payload in, and bumps it to even again. A reader loads the version, copies
// the payload, and loads the version again; the copy is valid only if both
// loads saw the same even value. Readers never block writers; a reader that
// overlaps a write simply retries.
//
// Consequently the payload is copied while it may be written. T must be
// fixed-size plain data: no pointers, slices, strings, maps, interfaces,
// channels or funcs. Constructors return [ErrPointerPayload] otherwise.
//
// # Queue Semantics
//
// A Queue is not a work queue. Consumption does not remove values: every
// consumer sees every value from the moment it was created, as long as it
// keeps within one lap of the producers. Producers never wait; a slow
// consumer loses data and is told so.
//
// TryConsume outcomes:
//
//	nil          value read, cursor advanced
//	ErrEmpty     not produced yet, cursor unchanged (alias of iox.ErrWouldBlock)
//	ErrSpedPast  overwritten by a later lap, cursor advanced
//
// Disciplines differ only in how a producer claims a position:
//
//	KindMPMC: fetch-and-add, any number of producers
//	KindSPMC: load + store, exactly one producer
//
// Under KindMPMC, producers a full lap apart may write the same slot at the
// same time. Size the capacity so that this cannot happen in practice.
//
// # Shared Memory
//
// Vector and Queue live in a single flat region: a 24-byte header followed
// by the slot array, with no pointers anywhere. Any process mapping the
// region can attach to it:
//
//	dir := shm.NewDir("")
//	q, err := icc.CreateQueue[Tick](dir, "ticks", 4096, icc.KindSPMC)  // create or attach
//	q, err := icc.OpenQueue[Tick](dir, "ticks")                        // attach only
//
// Processes must agree on T. The stored slot size is checked on attach
// ([ErrElementSizeMismatch]); the field layout is not.
//
// See [Provider] and [Region] for the memory abstraction and package
// code.hybscloud.com/icc/shm for implementations.
//
// # Ordering Guarantees
//
// Each slot is linearizable on its own. Nothing orders different slots of a
// Vector, and a Vector iteration is not a snapshot of the whole vector.
//
// # Waiting
//
// The only waiting inside the package is spinning on a slot whose write is
// in progress. Use [Consumer.Consume] with a done flag, or a loop with
// [code.hybscloud.com/iox.Backoff], to wait for new data.
//
// # Race Detection
//
// Seqlock reads copy the payload concurrently with writes by design and
// discard the copy if the version changed. The race detector reports these
// copies. Tests that exercise them are skipped when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions and [code.hybscloud.com/iox] for semantic errors.
package icc
