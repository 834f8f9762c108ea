// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package icc

// RaceEnabled is true when the race detector is active.
// Tests use it to skip concurrent reader/writer scenarios: seqlock payload
// copies race with writes on purpose and are validated by the version word,
// which the detector cannot see.
const RaceEnabled = true
