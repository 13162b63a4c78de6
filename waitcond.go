// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"context"
	"sync"
	"time"
)

// condition is the common surface both wait strategies (C3's mutexCondition
// and C4's parkCondition) offer to the blocking adapter (C7). await blocks
// until test reports true or ctx is done; awaitNanos additionally gives up
// once the timeout passes. signal wakes every goroutine currently blocked in
// await/awaitNanos so it can re-check test.
type condition interface {
	await(ctx context.Context, test func() bool) error
	awaitNanos(ctx context.Context, nanos int64, test func() bool) (bool, error)
	signal()
}

// mutexCondition is a condition built directly on sync.Mutex and sync.Cond,
// the standard library's condition variable. It is selected by BlockingQueue
// when useWaitingLocking is false: a thundering-herd Broadcast on every signal,
// no spinning, no bounded waiter table. Simpler and lower throughput under
// heavy contention than parkCondition, but predictable and cheap to reason
// about, which is why it stays the default for callers who only need
// correctness out of a blocking queue.
type mutexCondition struct {
	mu   sync.Mutex
	cond sync.Cond
}

func newMutexCondition() *mutexCondition {
	c := &mutexCondition{}
	c.cond.L = &c.mu
	return c
}

// await blocks until test() reports true or ctx is done. The caller's
// predicate is evaluated with the condition's own lock held, so test must not
// itself attempt to acquire locks the caller already holds elsewhere.
func (c *mutexCondition) await(ctx context.Context, test func() bool) error {
	if ctx.Done() == nil {
		c.mu.Lock()
		for !test() {
			c.cond.Wait()
		}
		c.mu.Unlock()
		return nil
	}

	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		close(done)
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for !test() {
		select {
		case <-done:
			return ErrInterrupted
		default:
		}
		c.cond.Wait()
	}
	return nil
}

// awaitNanos blocks until test() reports true, ctx is done, or nanos elapse,
// whichever comes first. It reports whether test() was true when it
// returned.
func (c *mutexCondition) awaitNanos(ctx context.Context, nanos int64, test func() bool) (bool, error) {
	if nanos <= 0 {
		c.mu.Lock()
		ok := test()
		c.mu.Unlock()
		return ok, nil
	}

	timer := time.NewTimer(time.Duration(nanos))
	defer timer.Stop()

	done := make(chan struct{})
	var once sync.Once
	stopTimer := func() { once.Do(func() { close(done) }) }

	go func() {
		select {
		case <-timer.C:
		case <-ctx.Done():
		case <-done:
			return
		}
		c.mu.Lock()
		stopTimer()
		c.cond.Broadcast()
		c.mu.Unlock()
	}()
	defer stopTimer()

	c.mu.Lock()
	defer c.mu.Unlock()
	for !test() {
		if ctx.Err() != nil {
			return false, ErrInterrupted
		}
		select {
		case <-done:
			return false, nil
		default:
		}
		c.cond.Wait()
	}
	return true, nil
}

// signal wakes every goroutine parked in await/awaitNanos so each can
// re-check its own predicate. Matching the reference implementation, callers
// signal unconditionally on both success and failure paths; a spurious
// wakeup only costs a predicate re-check.
func (c *mutexCondition) signal() {
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
}
