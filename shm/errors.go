// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shm

import "errors"

var (
	// ErrInvalidName: empty name, or a name containing a path separator.
	ErrInvalidName = errors.New("shm: invalid region name")

	// ErrInvalidSize: a region size below 1 byte.
	ErrInvalidSize = errors.New("shm: invalid region size")

	// ErrUnsupported: memory mapping is not available on this platform.
	ErrUnsupported = errors.ErrUnsupported
)
