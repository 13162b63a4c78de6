// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"runtime"
	"time"

	"code.hybscloud.com/spin"
)

// spinPolicy drives the progressive escalation used by the park-based wait
// condition (C4) while a waiter spins before registering in the waiter
// ring, and by Disruptor's Dequeue and Remove while they wait for a claimed
// slot range to be published.
//
// The curve: pause hints up to 500 iterations, then a 1-in-8 short park up
// to 1000, then a 1-in-4 cooperative yield up to MAX_PROG_YIELD, then a pure
// yield with no further counter growth. This mirrors the reference
// implementation's progressiveYield exactly (see DESIGN.md).
type spinPolicy struct {
	n  int
	sw spin.Wait
}

// next advances the policy by one step and performs the corresponding
// escalation action.
func (p *spinPolicy) next() {
	n := p.n
	switch {
	case n <= 500:
		p.sw.Once()
	case n < 1000:
		if n&0x7 == 0 {
			time.Sleep(PARK_TIMEOUT)
		} else {
			p.sw.Once()
		}
	case n < MAX_PROG_YIELD:
		if n&0x3 == 0 {
			runtime.Gosched()
		} else {
			p.sw.Once()
		}
	default:
		runtime.Gosched()
		return
	}
	p.n = n + 1
}

// reset returns the policy to its initial (pure pause-hint) state.
func (p *spinPolicy) reset() {
	p.n = 0
	p.sw = spin.Wait{}
}
