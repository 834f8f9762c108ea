// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"code.hybscloud.com/icc"
)

// filePrefix namespaces region files inside a shared directory.
const filePrefix = "icc_"

// Dir is a [icc.Provider] backed by files in one directory.
//
// Each region is a file named icc_<name>, sized on creation and mapped
// shared, read-write. Two processes using the same directory and name see
// the same memory.
type Dir struct {
	path   string
	logger *slog.Logger
}

var _ icc.Provider = (*Dir)(nil)

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger for region lifecycle events (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(d *Dir) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDir returns a provider rooted at path.
//
// An empty path selects /dev/shm when available (RAM-backed on Linux) and
// the system temporary directory otherwise.
func NewDir(path string, opts ...Option) *Dir {
	if path == "" {
		path = defaultPath()
	}
	d := &Dir{path: path, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(d)
	}
	return d
}

// defaultPath prefers /dev/shm and falls back to the temporary directory.
func defaultPath() string {
	info, err := os.Stat("/dev/shm")
	if err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// Path returns the directory holding the region files.
func (d *Dir) Path() string {
	return d.path
}

// File returns the file path of region name.
func (d *Dir) File(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.path, filePrefix+name), nil
}

// Remove deletes region name. Existing mappings stay valid until closed.
func (d *Dir) Remove(name string) error {
	p, err := d.File(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("shm: remove %q: %w", name, err)
	}
	d.logger.Debug("shm region removed", "name", name, "path", p)
	return nil
}
