// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"context"
	"sync/atomic"
	"time"
)

// parkWaiter is one slot of a parkCondition's waiter ring. ch holds a
// pointer to an unbuffered chan struct{} once a goroutine has registered
// itself as a waiter in this slot; it is nil when the slot is free. signal
// claims the slot by CASing ch back to nil and closing the channel it found,
// which is always safe exactly once since only signal ever transitions a
// slot from non-nil to nil.
type parkWaiter struct {
	ch atomic.Pointer[chan struct{}]
	_  padShort
}

// parkCondition is a condition built around a small fixed ring of waiter
// slots instead of a mutex-guarded sync.Cond. Every goroutine that finds
// its predicate false first spins in place without registering anywhere;
// it stops spinning once the spin policy exhausts itself or another waiter
// is already registered, then registers into a slot and blocks on a
// channel, so signal only ever has MAX_WAITERS channels to wake rather than
// an unbounded broadcast list. There is no single designated spinner: the
// first waiter registers and parks like any other once its spin ends.
//
// This is the Go rendition of the reference implementation's parking wait
// strategy: LockSupport.park/unpark has no library-level equivalent in Go,
// so each waiter's "parked" state is a receive on its own unbuffered channel,
// and "unpark" is signal closing that channel (see DESIGN.md).
type parkCondition struct {
	_            pad
	waitCount    PaddedCounter
	_            pad
	waitSequence PaddedCounter
	_            pad
	waitCache    PaddedCounter
	_            pad
	waiter       [MAX_WAITERS]parkWaiter
}

func newParkCondition() *parkCondition {
	return &parkCondition{}
}

// await blocks until test() reports true or ctx is done.
func (c *parkCondition) await(ctx context.Context, test func() bool) error {
	_, err := c.awaitNanos(ctx, -1, test)
	return err
}

// awaitNanos blocks until test() reports true, ctx is done, or nanos elapse
// (when nanos >= 0), whichever comes first. It reports whether test() was
// observed true before returning.
func (c *parkCondition) awaitNanos(ctx context.Context, nanos int64, test func() bool) (bool, error) {
	if test() {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, ErrInterrupted
	}

	var deadline time.Time
	hasDeadline := nanos >= 0
	if hasDeadline {
		deadline = time.Now().Add(time.Duration(nanos))
	}

	var sp spinPolicy
	for sp.n < MAX_PROG_YIELD {
		if test() {
			return true, nil
		}
		if ctx.Err() != nil {
			return false, ErrInterrupted
		}
		if hasDeadline && !time.Now().Before(deadline) {
			return false, nil
		}
		// A waiter already registered means signal may be walking the
		// ring right now; stop spinning alone and join the ring so the
		// in-flight signal has something to wake.
		if c.waitCount.LoadAcquire() != 0 {
			break
		}
		sp.next()
	}

	return c.parkLoop(ctx, deadline, hasDeadline, test)
}

// parkLoop registers the calling goroutine in the waiter ring and blocks on
// its slot's channel, re-checking test() each time it wakes, until test()
// is true, ctx is done, or the deadline (if any) passes.
func (c *parkCondition) parkLoop(ctx context.Context, deadline time.Time, hasDeadline bool, test func() bool) (bool, error) {
	slot := &c.waiter[c.waitSequence.AddAcqRel(1)&(MAX_WAITERS-1)]
	ch := make(chan struct{})
	pch := &ch
	for !slot.ch.CompareAndSwap(nil, pch) {
		// Slot still occupied by a waiter signal hasn't cleared yet; try
		// the next slot in the ring rather than blocking on a CAS spin.
		slot = &c.waiter[c.waitSequence.AddAcqRel(1)&(MAX_WAITERS-1)]
	}
	c.waitCount.AddAcqRel(1)

	defer func() {
		if slot.ch.CompareAndSwap(pch, nil) {
			c.waitCount.AddAcqRel(^uint64(0))
		}
	}()

	for {
		if test() {
			return true, nil
		}

		var timer *time.Timer
		var timerC <-chan time.Time
		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return false, nil
			}
			timer = time.NewTimer(remaining)
			timerC = timer.C
		}

		select {
		case <-ch:
			// Woken by signal: the slot was already cleared on our
			// behalf, so re-publish a fresh channel before looping,
			// unless test() is now satisfied.
			if timer != nil {
				timer.Stop()
			}
			if test() {
				return true, nil
			}
			if ctx.Err() != nil {
				return false, ErrInterrupted
			}
			ch = make(chan struct{})
			pch = &ch
			for !slot.ch.CompareAndSwap(nil, pch) {
				slot = &c.waiter[c.waitSequence.AddAcqRel(1)&(MAX_WAITERS-1)]
			}
			c.waitCount.AddAcqRel(1)
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return false, ErrInterrupted
		case <-timerC:
			return test(), nil
		}
	}
}

// signal wakes every goroutine currently registered in the waiter ring.
// A waitCount of zero lets a signal called with no waiters registered skip
// the scan entirely; it is a hint, not a lock, so a signal can still race a waiter
// that is mid-registration and simply miss it, the same tolerated race the
// reference implementation accepts (the waiter will observe the updated
// predicate on its own next check or spin iteration).
func (c *parkCondition) signal() {
	if c.waitCount.LoadAcquire() == 0 {
		return
	}
	for i := range c.waiter {
		slot := &c.waiter[i]
		if p := slot.ch.Load(); p != nil && slot.ch.CompareAndSwap(p, nil) {
			close(*p)
			c.waitCount.AddAcqRel(^uint64(0))
		}
	}
}
