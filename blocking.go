// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"context"
	"time"
)

// boundedRing is the non-blocking surface BlockingQueue needs from its
// backing ring. Both [Disruptor] and [MPMCSeq] satisfy it, so a
// BlockingQueue can be built over either algorithm interchangeably.
type boundedRing[T any] interface {
	Enqueue(e *T) error
	Dequeue() (T, error)
	Peek() (T, bool)
	Size() int
	Cap() int
	IsEmpty() bool
	Remove(dst []T) int
	Clear()
	Contains(v T, eq func(a, b T) bool) bool
}

// BlockingQueue adapts a boundedRing into a fixed-capacity blocking queue:
// Put/Take wait for room or data instead of failing immediately, the way
// java.util.concurrent.BlockingQueue does. Internally it is just a ring
// plus two conditions, notFull and notEmpty, each signaled on every
// Enqueue/Dequeue regardless of outcome — a signal is cheap and idempotent,
// so the reference implementation signals unconditionally rather than
// trying to prove a waiter actually needs waking.
type BlockingQueue[T any] struct {
	ring     boundedRing[T]
	notFull  condition
	notEmpty condition
	eq       func(a, b T) bool
}

// NewBlockingQueue wraps ring in a BlockingQueue. useWaitingLocking selects
// the park-based condition (C4, lower latency, more CPU-aggressive under
// contention) when true, or the mutex-based condition (C3, a plain
// sync.Cond broadcast) when false — the same tradeoff the reference
// implementation's constructor documents. eq is used by Contains; pass a
// simple equality closure for comparable T.
func NewBlockingQueue[T any](ring boundedRing[T], useWaitingLocking bool, eq func(a, b T) bool) *BlockingQueue[T] {
	q := &BlockingQueue[T]{ring: ring, eq: eq}
	if useWaitingLocking {
		q.notFull = newParkCondition()
		q.notEmpty = newParkCondition()
	} else {
		q.notFull = newMutexCondition()
		q.notEmpty = newMutexCondition()
	}
	return q
}

// Offer attempts to enqueue *e without blocking, signaling notEmpty
// unconditionally afterward (harmless on failure, matching the reference
// implementation).
func (q *BlockingQueue[T]) Offer(e *T) error {
	err := q.ring.Enqueue(e)
	q.notEmpty.signal()
	return err
}

// Poll attempts to dequeue without blocking, signaling notFull
// unconditionally afterward.
func (q *BlockingQueue[T]) Poll() (T, error) {
	e, err := q.ring.Dequeue()
	q.notFull.signal()
	return e, err
}

// Put enqueues *e, blocking until room is available or ctx is done.
func (q *BlockingQueue[T]) Put(ctx context.Context, e *T) error {
	for {
		if err := q.Offer(e); err == nil {
			return nil
		} else if !IsWouldBlock(err) {
			return err
		}
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		if err := q.notFull.await(ctx, func() bool { return q.ring.Size() < q.ring.Cap() }); err != nil {
			return err
		}
	}
}

// Take dequeues the next element, blocking until one is available or ctx
// is done.
func (q *BlockingQueue[T]) Take(ctx context.Context) (T, error) {
	for {
		e, err := q.Poll()
		if err == nil {
			return e, nil
		}
		if !IsWouldBlock(err) {
			return e, err
		}
		if ctx.Err() != nil {
			var zero T
			return zero, ErrInterrupted
		}
		if err := q.notEmpty.await(ctx, func() bool { return !q.ring.IsEmpty() }); err != nil {
			return e, err
		}
	}
}

// OfferTimeout enqueues *e, waiting up to timeout for room. It reports
// false (no error) if the deadline passed before room opened up.
func (q *BlockingQueue[T]) OfferTimeout(ctx context.Context, e *T, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		if err := q.Offer(e); err == nil {
			return true, nil
		} else if !IsWouldBlock(err) {
			return false, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		ok, err := q.notFull.awaitNanos(ctx, int64(remaining), func() bool { return q.ring.Size() < q.ring.Cap() })
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
}

// PollTimeout dequeues the next element, waiting up to timeout for data.
// The second result is false (no error) if the deadline passed with the
// queue still empty.
func (q *BlockingQueue[T]) PollTimeout(ctx context.Context, timeout time.Duration) (T, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		e, err := q.Poll()
		if err == nil {
			return e, true, nil
		}
		if !IsWouldBlock(err) {
			return e, false, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			var zero T
			return zero, false, nil
		}
		ok, err := q.notEmpty.awaitNanos(ctx, int64(remaining), func() bool { return !q.ring.IsEmpty() })
		if err != nil {
			var zero T
			return zero, false, err
		}
		if !ok {
			var zero T
			return zero, false, nil
		}
	}
}

// Add enqueues *e, returning ErrCapacityExhausted instead of blocking when
// the queue is full.
func (q *BlockingQueue[T]) Add(e *T) error {
	if err := q.Offer(e); err != nil {
		if IsWouldBlock(err) {
			return ErrCapacityExhausted
		}
		return err
	}
	return nil
}

// Element returns the head element without removing it, or ErrEmpty if
// the queue is empty.
func (q *BlockingQueue[T]) Element() (T, error) {
	if v, ok := q.ring.Peek(); ok {
		return v, nil
	}
	var zero T
	return zero, ErrEmpty
}

// RemainingCapacity reports how many more elements can be enqueued before
// the queue is full.
func (q *BlockingQueue[T]) RemainingCapacity() int {
	return q.ring.Cap() - q.ring.Size()
}

// DrainTo copies up to len(dst) elements into dst in FIFO order and
// removes them, returning the number copied. It never blocks.
func (q *BlockingQueue[T]) DrainTo(dst []T) int {
	n := q.ring.Remove(dst)
	if n > 0 {
		q.notFull.signal()
	}
	return n
}

// DrainInto drains into another BlockingQueue, stopping if sink becomes
// full. It reports ErrIllegalArgument if sink is q itself, matching the
// reference implementation's self-drain guard.
func (q *BlockingQueue[T]) DrainInto(sink *BlockingQueue[T]) (int, error) {
	if sink == q {
		return 0, ErrIllegalArgument
	}
	buf := make([]T, max(0, min(q.ring.Size(), sink.RemainingCapacity())))
	n := q.DrainTo(buf)
	copied := 0
	for i := 0; i < n; i++ {
		if err := sink.Offer(&buf[i]); err != nil {
			break
		}
		copied++
	}
	return copied, nil
}

// Clear empties the queue and signals notFull once.
func (q *BlockingQueue[T]) Clear() {
	q.ring.Clear()
	q.notFull.signal()
}

// Contains reports whether v is present anywhere in the queue.
func (q *BlockingQueue[T]) Contains(v T) bool {
	return q.ring.Contains(v, q.eq)
}

// Size reports the number of elements currently in the queue.
func (q *BlockingQueue[T]) Size() int { return q.ring.Size() }

// Cap reports the queue's fixed capacity.
func (q *BlockingQueue[T]) Cap() int { return q.ring.Cap() }

// IsEmpty reports whether the queue currently holds no elements.
func (q *BlockingQueue[T]) IsEmpty() bool { return q.ring.IsEmpty() }
