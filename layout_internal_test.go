// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
	"unsafe"
)

func checkOffset(t *testing.T, typ reflect.Type, field string, want uintptr) {
	t.Helper()
	f, ok := typ.FieldByName(field)
	if !ok {
		t.Fatalf("%s: no field %s", typ, field)
	}
	if f.Offset != want {
		t.Fatalf("%s.%s offset: got %d, want %d", typ, field, f.Offset, want)
	}
}

// TestHeaderLayout pins the shared-memory header layout.
func TestHeaderLayout(t *testing.T) {
	typ := reflect.TypeFor[header]()
	checkOffset(t, typ, "meta", 0)
	checkOffset(t, typ, "elemSize", 4)
	checkOffset(t, typ, "length", 8)
	checkOffset(t, typ, "count", 16)
	if headerSize != 24 {
		t.Fatalf("headerSize: got %d, want 24", headerSize)
	}
}

// TestSlotLayout verifies the version word precedes the payload and slots
// are contiguous after the header.
func TestSlotLayout(t *testing.T) {
	checkOffset(t, reflect.TypeFor[Seqlock[[3]byte]](), "payload", 8)

	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"int64", slotSize[int64](), 16},
		{"[3]byte", slotSize[[3]byte](), 16},
		{"[3]int64", slotSize[[3]int64](), 32},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("slotSize[%s]: got %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	v, err := NewVector[[3]int64](4)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	first := uintptr(unsafe.Pointer(v.slot(0)))
	if first != uintptr(v.base)+24 {
		t.Fatalf("slot 0 at base+%d, want base+24", first-uintptr(v.base))
	}
	for i := 1; i < 4; i++ {
		got := uintptr(unsafe.Pointer(v.slot(i))) - first
		if got != uintptr(i)*32 {
			t.Fatalf("slot %d offset: got %d, want %d", i, got, i*32)
		}
	}
	if uintptr(v.base)%cacheLineSize != 0 {
		t.Fatalf("private allocation not cache-line aligned: %#x", uintptr(v.base))
	}
}

// TestHeaderMeta verifies the kind tag sits in the first byte and the
// initialized flag in the second.
func TestHeaderMeta(t *testing.T) {
	buf := make([]uint64, 3)
	h := headerAt(unsafe.Pointer(&buf[0]))

	if _, ok := h.load(); ok {
		t.Fatalf("zeroed header reports initialized")
	}
	h.publish(KindSPMC)
	k, ok := h.load()
	if !ok || k != KindSPMC {
		t.Fatalf("load: got (%v, %v), want (SPMC, true)", k, ok)
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), 24)
	if b[0] != byte(KindSPMC) || b[1] != 1 {
		t.Fatalf("meta bytes: got %v, want [%d 1]", b[:2], KindSPMC)
	}
}

type pointerFree struct {
	A [4]int32
	B struct {
		X float64
		Y bool
	}
}

type nestedPointer struct {
	A [2]struct {
		M map[int]int
	}
}

// TestHasPointers covers the payload classification.
func TestHasPointers(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"int64", hasPointers[int64](), false},
		{"[8]uint64", hasPointers[[8]uint64](), false},
		{"pointerFree", hasPointers[pointerFree](), false},
		{"complex128", hasPointers[complex128](), false},
		{"*int", hasPointers[*int](), true},
		{"string", hasPointers[string](), true},
		{"[]byte", hasPointers[[]byte](), true},
		{"any", hasPointers[any](), true},
		{"func()", hasPointers[func()](), true},
		{"chan int", hasPointers[chan int](), true},
		{"unsafe.Pointer", hasPointers[unsafe.Pointer](), true},
		{"nestedPointer", hasPointers[nestedPointer](), true},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("hasPointers[%s]: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

// TestRoundToPow2 covers the capacity rounding helper.
func TestRoundToPow2(t *testing.T) {
	tests := map[int]int{-1: 2, 0: 2, 1: 2, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128, 1 << 20: 1 << 20}
	for in, want := range tests {
		if got := roundToPow2(in); got != want {
			t.Fatalf("roundToPow2(%d): got %d, want %d", in, got, want)
		}
	}
}

// TestHostLittleEndian guards the header byte layout, which packs the kind
// tag and initialized flag into one int32.
func TestHostLittleEndian(t *testing.T) {
	if binary.NativeEndian.Uint16([]byte{1, 0}) != 1 {
		t.Fatalf("big-endian host: header byte offsets do not hold")
	}
}

// TestLengthBounds verifies lengths whose region size would overflow are
// rejected before anything is allocated.
func TestLengthBounds(t *testing.T) {
	limit := maxSlots[int64]()
	if want := int((uintptr(math.MaxInt) - 24) / 16); limit != want {
		t.Fatalf("maxSlots[int64]: got %d, want %d", limit, want)
	}

	for _, n := range []int{math.MaxInt, math.MaxInt/4 + 1, limit/2 + 1} {
		if _, err := NewQueue[int64](n, KindMPMC); !errors.Is(err, ErrInvalidLength) {
			t.Fatalf("NewQueue(%d): got %v, want ErrInvalidLength", n, err)
		}
	}
	for _, n := range []int{math.MaxInt, limit + 1} {
		if _, err := NewVector[int64](n); !errors.Is(err, ErrInvalidLength) {
			t.Fatalf("NewVector(%d): got %v, want ErrInvalidLength", n, err)
		}
	}
	// Rounding of the largest accepted queue length stays within the bound
	if got := roundToPow2(limit / 2); got <= 0 || got > limit {
		t.Fatalf("roundToPow2(%d): got %d, want in (0, %d]", limit/2, got, limit)
	}
}

// TestAttachRejectsOversizedHeader verifies a corrupt stored length cannot
// overflow the region size check.
func TestAttachRejectsOversizedHeader(t *testing.T) {
	buf := make([]uint64, 64)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*8)

	if _, err := QueueFromBytes[int64](b, 4, KindMPMC); err != nil {
		t.Fatalf("QueueFromBytes: %v", err)
	}
	h := headerAt(unsafe.Pointer(&buf[0]))
	h.length = 1<<63 - 1 // capacity 1<<63
	if _, err := AttachQueue[int64](b); !errors.Is(err, ErrRegionTooSmall) {
		t.Fatalf("AttachQueue: got %v, want ErrRegionTooSmall", err)
	}

	clear(buf)
	if _, err := VectorFromBytes[int64](b, 4); err != nil {
		t.Fatalf("VectorFromBytes: %v", err)
	}
	h.length = 1 << 62
	if _, err := AttachVector[int64](b, 0); !errors.Is(err, ErrRegionTooSmall) {
		t.Fatalf("AttachVector: got %v, want ErrRegionTooSmall", err)
	}
}
