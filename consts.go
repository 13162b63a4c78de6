// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "time"

// PARK_TIMEOUT is the short park interval used by the progressive spin
// policy (C2) and by the park-based wait condition (C4).
const PARK_TIMEOUT = 50 * time.Nanosecond

// MAX_PROG_YIELD is the spin count at which the progressive spin policy
// (C2) stops escalating and settles into a pure cooperative yield.
const MAX_PROG_YIELD = 2000

// MAX_WAITERS is the fixed size of the park-based wait condition's (C4)
// waiter slot ring.
const MAX_WAITERS = 8
