// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"code.hybscloud.com/icc"
)

// Segment is a mapped region file.
type Segment struct {
	name string
	path string
	mem  []byte
}

var _ icc.Region = (*Segment)(nil)

// Bytes returns the mapped memory.
func (s *Segment) Bytes() []byte {
	return s.mem
}

// Name returns the region name.
func (s *Segment) Name() string {
	return s.name
}

// Close unmaps the segment. The file is left in place.
func (s *Segment) Close() error {
	if s.mem == nil {
		return nil
	}
	mem := s.mem
	s.mem = nil
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("shm: munmap %q: %w", s.name, err)
	}
	return nil
}

// Create creates region name of size bytes, zero-filled.
// Fails with an error wrapping fs.ErrExist if the region exists.
func (d *Dir) Create(name string, size int) (icc.Region, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	p, err := d.File(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: create %q: %w", name, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		os.Remove(p)
		return nil, fmt.Errorf("shm: resize %q: %w", name, err)
	}

	mem, err := mmap(f, size)
	if err != nil {
		os.Remove(p)
		return nil, fmt.Errorf("shm: map %q: %w", name, err)
	}

	d.logger.Debug("shm region created", "name", name, "path", p, "size", size)
	return &Segment{name: name, path: p, mem: mem}, nil
}

// Open maps an existing region in full.
// Fails with an error wrapping fs.ErrNotExist if there is no such region.
func (d *Dir) Open(name string) (icc.Region, error) {
	p, err := d.File(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(p, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: open %q: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("shm: stat %q: %w", name, err)
	}
	if info.Size() < 1 {
		// Created but not truncated yet
		return nil, fmt.Errorf("shm: open %q: %w", name, icc.ErrUninitialized)
	}

	mem, err := mmap(f, int(info.Size()))
	if err != nil {
		return nil, fmt.Errorf("shm: map %q: %w", name, err)
	}

	d.logger.Debug("shm region opened", "name", name, "path", p, "size", len(mem))
	return &Segment{name: name, path: p, mem: mem}, nil
}

// mmap maps f shared and read-write. The mapping outlives f.
func mmap(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}
