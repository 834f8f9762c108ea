// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc_test

import (
	"errors"
	"sync"
	"testing"
	"time"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/icc"
)

// =============================================================================
// Test Helpers
// =============================================================================

// words views a plain array of uint64 as a slice.
func words[A any](a *A) []uint64 {
	return unsafe.Slice((*uint64)(unsafe.Pointer(a)), unsafe.Sizeof(*a)/8)
}

// tornReadDuration bounds the concurrent reader/writer tests.
func tornReadDuration() time.Duration {
	if testing.Short() {
		return 50 * time.Millisecond
	}
	return 300 * time.Millisecond
}

// tornReadTest runs one writer filling every word of A with the same
// counter value while a reader checks that no snapshot mixes two values.
func tornReadTest[A any](t *testing.T, read func(*icc.Seqlock[A], *A)) {
	t.Helper()
	if icc.RaceEnabled {
		t.Skip("skip: seqlock payload copies race with writes by design")
	}

	lock := icc.NewSeqlock(*new(A))
	var done atomix.Bool
	var wg sync.WaitGroup

	var torn, nonZero atomix.Int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		msg := new(A)
		for !done.LoadAcquire() {
			read(lock, msg)
			w := words(msg)
			first := w[0]
			for _, x := range w {
				if x != first {
					torn.Add(1)
					break
				}
			}
			if first != 0 {
				nonZero.Add(1)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		msg := new(A)
		count := uint64(0)
		for time.Since(start) < tornReadDuration() {
			count++
			for i := range words(msg) {
				words(msg)[i] = count
			}
			lock.Write(msg)
		}
		done.StoreRelease(true)
	}()

	wg.Wait()

	if n := torn.Load(); n != 0 {
		t.Fatalf("torn reads: got %d, want 0", n)
	}
	if nonZero.Load() == 0 {
		t.Fatalf("reader never observed a written value")
	}
}

// =============================================================================
// Torn Read Protection
// =============================================================================

func optimistic[A any](s *icc.Seqlock[A], out *A)  { s.Read(out) }
func pessimistic[A any](s *icc.Seqlock[A], out *A) { s.PessimisticRead(out) }

func TestSeqlockNoTornReads16(t *testing.T)  { tornReadTest[[16]uint64](t, optimistic) }
func TestSeqlockNoTornReads32(t *testing.T)  { tornReadTest[[32]uint64](t, optimistic) }
func TestSeqlockNoTornReads64(t *testing.T)  { tornReadTest[[64]uint64](t, optimistic) }
func TestSeqlockNoTornReads128(t *testing.T) { tornReadTest[[128]uint64](t, optimistic) }

func TestSeqlockNoTornReadsLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("skip: large payload in short mode")
	}
	tornReadTest[[1 << 16]uint64](t, optimistic)
}

func TestSeqlockPessimisticNoTornReads16(t *testing.T) {
	tornReadTest[[16]uint64](t, pessimistic)
}

func TestSeqlockPessimisticNoTornReads128(t *testing.T) {
	tornReadTest[[128]uint64](t, pessimistic)
}

// =============================================================================
// Versioning
// =============================================================================

// TestSeqlockVersion verifies that each write advances the version by 2.
func TestSeqlockVersion(t *testing.T) {
	var s icc.Seqlock[int64]

	if v := s.Version(); v != 0 {
		t.Fatalf("initial Version: got %d, want 0", v)
	}
	for i := range 5 {
		v := int64(i)
		s.Write(&v)
		if got, want := s.Version(), uint64(2*(i+1)); got != want {
			t.Fatalf("Version after %d writes: got %d, want %d", i+1, got, want)
		}
	}
	if got := s.Load(); got != 4 {
		t.Fatalf("Load: got %d, want 4", got)
	}
}

// TestSeqlockReadWithVersion covers the three outcomes of a versioned read.
func TestSeqlockReadWithVersion(t *testing.T) {
	s := icc.NewSeqlock[int64](0)
	var out int64

	// Nothing written: generation 2 not produced yet
	if err := s.ReadWithVersion(&out, 2); !errors.Is(err, icc.ErrEmpty) {
		t.Fatalf("ReadWithVersion before write: got %v, want ErrEmpty", err)
	}

	v := int64(7)
	s.Write(&v)
	if err := s.ReadWithVersion(&out, 2); err != nil {
		t.Fatalf("ReadWithVersion(2): %v", err)
	}
	if out != 7 {
		t.Fatalf("ReadWithVersion(2): got %d, want 7", out)
	}

	// Next generation not there yet
	if err := s.ReadWithVersion(&out, 4); !icc.IsEmpty(err) {
		t.Fatalf("ReadWithVersion(4): got %v, want ErrEmpty", err)
	}

	// Overwrite: generation 2 is gone
	v = 8
	s.Write(&v)
	if err := s.ReadWithVersion(&out, 2); !icc.IsSpedPast(err) {
		t.Fatalf("ReadWithVersion(2) after overwrite: got %v, want ErrSpedPast", err)
	}
	if err := s.ReadWithVersion(&out, 4); err != nil || out != 8 {
		t.Fatalf("ReadWithVersion(4): got (%d, %v), want (8, nil)", out, err)
	}
}

// TestSeqlockZeroValue verifies the zero Seqlock reads the zero payload.
func TestSeqlockZeroValue(t *testing.T) {
	var s icc.Seqlock[[3]uint32]
	var out [3]uint32
	out[0] = 99
	s.Read(&out)
	if out != ([3]uint32{}) {
		t.Fatalf("Read: got %v, want zero", out)
	}
	s.PessimisticRead(&out)
	if out != ([3]uint32{}) {
		t.Fatalf("PessimisticRead: got %v, want zero", out)
	}
}

// TestNewSeqlockRejectsPointers verifies the pointer-free payload rule.
func TestNewSeqlockRejectsPointers(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewSeqlock[*int]: expected panic")
		}
	}()
	icc.NewSeqlock[*int](nil)
}

// TestSemanticClassification verifies iox delegation for per-call outcomes.
func TestSemanticClassification(t *testing.T) {
	if !icc.IsSemantic(icc.ErrEmpty) {
		t.Fatalf("IsSemantic(ErrEmpty): got false, want true")
	}
	if !icc.IsNonFailure(nil) || !icc.IsNonFailure(icc.ErrEmpty) {
		t.Fatalf("IsNonFailure: nil and ErrEmpty must be non-failures")
	}
	if icc.IsNonFailure(icc.ErrSpedPast) {
		t.Fatalf("IsNonFailure(ErrSpedPast): got true, want false")
	}
	if icc.IsEmpty(icc.ErrSpedPast) || icc.IsSpedPast(icc.ErrEmpty) {
		t.Fatalf("ErrEmpty and ErrSpedPast must be distinct")
	}
}
