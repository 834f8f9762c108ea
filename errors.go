// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrEmpty indicates that the slot a consumer is waiting on has not been
// produced yet.
//
// ErrEmpty is a control flow signal, not a failure. The consumer's cursor
// does not move, so the caller simply retries later (with backoff or yield).
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := c.TryConsume(&msg)
//	    if err == nil {
//	        backoff.Reset()
//	        handle(msg)
//	        continue
//	    }
//	    if icc.IsEmpty(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    // icc.ErrSpedPast: data was overwritten before it could be read
//	    c.Resync()
//	}
var ErrEmpty = iox.ErrWouldBlock

// ErrSpedPast indicates that the producer wrapped the ring and overwrote the
// slot before the consumer read it. The consumer's cursor has already moved
// past the lost slot; the caller decides whether to skip, log or [Consumer.Resync].
var ErrSpedPast = errors.New("icc: producer sped past consumer")

// ErrClosed is returned by [Consumer.Consume] when the done flag was raised
// before a value arrived.
var ErrClosed = errors.New("icc: consume cancelled")

// Construction errors. These are returned by constructors and attach
// functions and are never retryable.
var (
	// ErrUninitialized: the region was never initialized by a constructor.
	ErrUninitialized = errors.New("icc: region not initialized")

	// ErrLengthNotPowerOfTwo: a queue length (requested or stored) is not a power of two.
	ErrLengthNotPowerOfTwo = errors.New("icc: queue length not power of two")

	// ErrElementSizeNotPowerOfTwo: the slot size is not a power of two.
	// Only reported when the builder asks for [Builder.StrictElementSize].
	ErrElementSizeNotPowerOfTwo = errors.New("icc: element size not power of two")

	// ErrElementSizeMismatch: the region records a slot size different from Seqlock[T].
	ErrElementSizeMismatch = errors.New("icc: element size mismatch")

	// ErrRegionTooSmall: the byte region cannot hold the requested layout.
	ErrRegionTooSmall = errors.New("icc: region too small")

	// ErrMisaligned: the byte region is not 8-byte aligned.
	ErrMisaligned = errors.New("icc: region not 8-byte aligned")

	// ErrKindMismatch: a vector region attached as a queue or vice versa.
	ErrKindMismatch = errors.New("icc: region kind mismatch")

	// ErrInvalidKind: a queue was requested with a kind other than MPMC or SPMC.
	ErrInvalidKind = errors.New("icc: invalid queue kind")

	// ErrInvalidLength: a non-positive length, or one whose region size
	// would not fit in an int.
	ErrInvalidLength = errors.New("icc: length must be positive")

	// ErrPointerPayload: the payload type holds pointers and cannot live in
	// raw or shared memory.
	ErrPointerPayload = errors.New("icc: payload type contains pointers")
)

// IsEmpty reports whether err indicates there is nothing new to consume.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsEmpty(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSpedPast reports whether err indicates data loss from a lapped consumer.
func IsSpedPast(err error) bool {
	return errors.Is(err, ErrSpedPast)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrEmpty.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
