// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package shm provides named memory regions for icc containers.
//
// Two providers implement [icc.Provider]:
//
//   - Dir: files in a directory (default /dev/shm) mapped with mmap(2),
//     shared by every process that maps the same name
//   - Mem: in-process regions kept in a map, for tests and for sharing
//     between independently constructed handles inside one process
//
// Both hand out zero-filled regions from Create and fail with an error
// wrapping [fs.ErrExist] when the name is taken, which is what
// [icc.CreateQueue] and [icc.CreateVector] rely on to attach instead.
//
// Regions outlive their mappings. Close unmaps; Remove deletes the name.
//
//	dir := shm.NewDir("", shm.WithLogger(logger))
//	q, err := icc.CreateQueue[Tick](dir, "ticks", 4096, icc.KindSPMC)
//	...
//	q.Close()
//	dir.Remove("ticks")
package shm
