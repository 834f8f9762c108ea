// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shm

import (
	"fmt"
	"io/fs"
	"sync"
	"unsafe"

	"code.hybscloud.com/icc"
)

// Mem is an in-process [icc.Provider].
//
// Regions are ordinary heap memory, 8-byte aligned and zero-filled, kept
// alive by the provider until removed. Opening a name twice returns views of
// the same memory. The mutex guards the name table only; region contents
// are never locked.
type Mem struct {
	mu      sync.Mutex
	regions map[string][]byte
}

var _ icc.Provider = (*Mem)(nil)

// NewMem returns an empty in-process provider.
func NewMem() *Mem {
	return &Mem{regions: make(map[string][]byte)}
}

// Create allocates region name of size bytes.
// Fails with an error wrapping fs.ErrExist if the region exists.
func (m *Mem) Create(name string, size int) (icc.Region, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if size < 1 {
		return nil, ErrInvalidSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.regions[name]; ok {
		return nil, fmt.Errorf("shm: create %q: %w", name, fs.ErrExist)
	}
	words := make([]uint64, (size+7)/8)
	b := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size)
	m.regions[name] = b
	return memRegion(b), nil
}

// Open returns region name.
// Fails with an error wrapping fs.ErrNotExist if there is no such region.
func (m *Mem) Open(name string) (icc.Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.regions[name]
	if !ok {
		return nil, fmt.Errorf("shm: open %q: %w", name, fs.ErrNotExist)
	}
	return memRegion(b), nil
}

// Remove forgets region name. Open views keep the memory alive.
func (m *Mem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.regions[name]; !ok {
		return fmt.Errorf("shm: remove %q: %w", name, fs.ErrNotExist)
	}
	delete(m.regions, name)
	return nil
}

// Names returns the region names currently held.
func (m *Mem) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.regions))
	for n := range m.regions {
		names = append(names, n)
	}
	return names
}

type memRegion []byte

func (r memRegion) Bytes() []byte { return r }
func (r memRegion) Close() error  { return nil }
