// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

// Disruptor is a bounded MPMC ring buffer sequenced by a split pair of
// cursors per side: tail/tailCursor for producers, head/headCursor for
// consumers. A producer first CASes tailCursor forward to claim a slot,
// writes into it, then lazily publishes by advancing tail; a consumer
// mirrors this with headCursor/head. The committed tail/head pair is what
// readers on the other side observe, so a claim that is still in flight
// (cursor advanced, tail/head not yet caught up) is invisible to the peer
// side until the writer publishes.
//
// This is the split-cursor Disruptor ring, distinct from [MPMCSeq]'s
// per-slot-sequence Vyukov ring: Disruptor keeps four counters and a slot
// array of bare values, while MPMCSeq keeps two counters and a slot array
// carrying its own sequence number per entry. Both are exposed through the
// same boundedRing surface so BlockingQueue can sit on either.
type Disruptor[T any] struct {
	_          pad
	tail       PaddedCounter
	_          pad
	tailCursor PaddedCounter
	_          pad
	head       PaddedCounter
	_          pad
	headCursor PaddedCounter
	_          pad
	headCache  PaddedCounter
	_          pad
	buffer     []T
	mask       uint64
	capacity   uint64
}

// NewDisruptor returns a Disruptor whose capacity is the next power of two
// greater than or equal to capacity.
func NewDisruptor[T any](capacity int) *Disruptor[T] {
	n := roundToPow2(capacity)
	d := &Disruptor[T]{
		buffer:   make([]T, n),
		mask:     uint64(n) - 1,
		capacity: uint64(n),
	}
	return d
}

// NewDisruptorSeeded returns a Disruptor of the given capacity pre-loaded
// with seed, in iteration order. If seed has more elements than the rounded
// capacity, later elements overwrite earlier ones so that only the last
// capacity elements survive, mirroring the reference constructor that feeds
// a collection through repeated offer calls.
func NewDisruptorSeeded[T any](capacity int, seed []T) *Disruptor[T] {
	d := NewDisruptor[T](capacity)
	for i := range seed {
		if err := d.Enqueue(&seed[i]); err != nil {
			_, _ = d.Dequeue()
			_ = d.Enqueue(&seed[i])
		}
	}
	return d
}

// Cap returns the ring's rounded capacity.
func (d *Disruptor[T]) Cap() int { return int(d.capacity) }

// Enqueue attempts to enqueue *e, returning ErrWouldBlock if the ring is full.
func (d *Disruptor[T]) Enqueue(e *T) error {
	for {
		tail := d.tail.LoadAcquire()
		queueStart := tail - d.capacity
		headCache := d.headCache.LoadRelaxed()
		if headCache == queueStart {
			head := d.head.LoadAcquire()
			d.headCache.StoreRelaxed(head)
			if head == queueStart {
				return ErrWouldBlock
			}
		}

		if !d.tailCursor.CompareAndSwapAcqRel(tail, tail+1) {
			continue
		}

		d.buffer[tail&d.mask] = *e
		d.tail.StoreRelease(tail + 1)
		return nil
	}
}

// Dequeue attempts to dequeue the next element, returning ErrWouldBlock if
// the ring is empty.
func (d *Disruptor[T]) Dequeue() (T, error) {
	var zero T
	for {
		head := d.head.LoadAcquire()
		tail := d.tail.LoadAcquire()
		if tail == head {
			return zero, ErrWouldBlock
		}

		if !d.headCursor.CompareAndSwapAcqRel(head, head+1) {
			continue
		}

		var sp spinPolicy
		for d.tail.LoadAcquire() < head+1 {
			sp.next()
		}

		slot := head & d.mask
		e := d.buffer[slot]
		d.buffer[slot] = zero
		d.head.StoreRelease(head + 1)
		return e, nil
	}
}

// Peek returns the element at the current head without claiming it. The
// second result is false if the ring was empty; a transient claim in
// flight can also cause Peek to observe a stale or zero value, which
// callers must tolerate the same way the reference implementation does.
func (d *Disruptor[T]) Peek() (T, bool) {
	head := d.head.LoadAcquire()
	tail := d.tail.LoadAcquire()
	if tail == head {
		var zero T
		return zero, false
	}
	return d.buffer[head&d.mask], true
}

// Size reports the number of committed, unclaimed elements.
func (d *Disruptor[T]) Size() int {
	tail := d.tail.LoadAcquire()
	head := d.head.LoadAcquire()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// IsEmpty reports whether the ring currently holds no committed elements.
func (d *Disruptor[T]) IsEmpty() bool {
	return d.tail.LoadAcquire() == d.head.LoadAcquire()
}

// Remove drains up to len(dst) elements into dst in FIFO order via a single
// batch claim, returning the number copied.
func (d *Disruptor[T]) Remove(dst []T) int {
	if len(dst) == 0 {
		return 0
	}
	for {
		head := d.head.LoadAcquire()
		tail := d.tail.LoadAcquire()
		avail := int64(tail - head)
		if avail <= 0 {
			return 0
		}
		k := int64(len(dst))
		if avail < k {
			k = avail
		}

		if !d.headCursor.CompareAndSwapAcqRel(head, head+uint64(k)) {
			continue
		}

		var sp spinPolicy
		for d.tail.LoadAcquire() < head+uint64(k) {
			sp.next()
		}

		var zero T
		for i := int64(0); i < k; i++ {
			slot := (head + uint64(i)) & d.mask
			dst[i] = d.buffer[slot]
			d.buffer[slot] = zero
		}
		d.head.StoreRelease(head + uint64(k))
		return int(k)
	}
}

// RemoveMatch removes every element equal to target, compacting the ring
// in place so iteration order among the surviving elements is preserved.
// It is a full stop-the-world operation within this ring: headCursor and
// tailCursor are each CASed forward by one before the scan begins, so
// every other Enqueue/Dequeue fails its claim CAS and retries until the
// cursors are restored when it finishes. It exists
// for interface completeness, not for the hot path.
func (d *Disruptor[T]) RemoveMatch(target T, eq func(a, b T) bool) int {
	for {
		head := d.head.LoadAcquire()
		if !d.headCursor.CompareAndSwapAcqRel(head, head+1) {
			continue
		}
		for {
			tail := d.tail.LoadAcquire()
			if !d.tailCursor.CompareAndSwapAcqRel(tail, tail+1) {
				continue
			}

			n := 0
			size := int64(tail) - int64(head)
			if size < 0 {
				size = 0
			}
			for i := int64(0); i < size; i++ {
				slot := (head + uint64(i)) & d.mask
				if eq(d.buffer[slot], target) {
					n++
					for j := i; j > 0; j-- {
						cur := (head + uint64(j-1)) & d.mask
						next := (head + uint64(j)) & d.mask
						d.buffer[next] = d.buffer[cur]
					}
				}
			}

			if n > 0 {
				d.headCursor.StoreRelease(head + uint64(n))
				d.tailCursor.StoreRelease(tail)
				d.head.StoreRelease(head + uint64(n))
			} else {
				d.tailCursor.StoreRelease(tail)
				d.headCursor.StoreRelease(head)
			}
			return n
		}
	}
}

// Contains reports whether v is present anywhere in the currently
// committed range. The read is weakly consistent: a concurrent Enqueue or
// Dequeue may cause it to miss or see an element transiently.
func (d *Disruptor[T]) Contains(v T, eq func(a, b T) bool) bool {
	head := d.head.LoadAcquire()
	tail := d.tail.LoadAcquire()
	size := int64(tail) - int64(head)
	for i := int64(0); i < size; i++ {
		if eq(d.buffer[(head+uint64(i))&d.mask], v) {
			return true
		}
	}
	return false
}

// Clear empties the ring by repeated batch removal.
func (d *Disruptor[T]) Clear() {
	buf := make([]T, d.capacity)
	for {
		if d.Remove(buf) == 0 {
			return
		}
	}
}
