// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "code.hybscloud.com/atomix"

// PaddedCounter is a 64-bit monotonic counter isolated on its own cache
// line. It wraps [atomix.Uint64] (the same explicit-ordering atomic the
// rest of the package uses) with 15 filler words so that two adjacent
// PaddedCounters in a containing struct never share a cache line, even
// without the sibling pad/padShort fields the teacher's SCQ rings use.
//
// Disruptor (C5) and parkCondition (C4) still bracket each PaddedCounter
// with an extra pad field, matching the rest of the package's layout convention;
// PaddedCounter's own filler is what makes that convention correct rather
// than decorative.
type PaddedCounter struct {
	atomix.Uint64
	_ [15]uint64
}
