// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !unix

package shm

import (
	"fmt"

	"code.hybscloud.com/icc"
)

// Create is not supported on this platform.
func (d *Dir) Create(name string, size int) (icc.Region, error) {
	return nil, fmt.Errorf("shm: create %q: %w", name, ErrUnsupported)
}

// Open is not supported on this platform.
func (d *Dir) Open(name string) (icc.Region, error) {
	return nil, fmt.Errorf("shm: open %q: %w", name, ErrUnsupported)
}
