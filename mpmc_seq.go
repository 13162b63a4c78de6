// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPMCSeq is a CAS-based multi-producer multi-consumer bounded queue.
//
// Uses per-slot sequence numbers which provide:
//   - Full ABA safety via sequence-based validation
//   - Works with both distinct and non-distinct values
//   - Good performance under moderate contention
//
// This is the Compact variant using n slots (vs 2n for FAA-based default).
// Use NewMPMC for the default FAA-based implementation with better scalability.
//
// This is the per-slot-sequence ring, distinct from [Disruptor]'s
// split-cursor design: each slot here carries its own sequence number
// instead of the ring being gated by a shared pair of cursors. Both are
// exposed through the same boundedRing surface so BlockingQueue can sit on
// either.
//
// Memory: n slots (16+ bytes per slot)
type MPMCSeq[T any] struct {
	_        pad
	tail     atomix.Uint64 // Producer index
	_        pad
	head     atomix.Uint64 // Consumer index
	_        pad
	buffer   []mpmcSeqSlot[T]
	mask     uint64
	capacity uint64
}

type mpmcSeqSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort // Pad to cache line
}

// NewMPMCSeq creates a new CAS-based MPMC queue.
// Capacity rounds up to the next power of 2.
// This is the Compact variant. Use NewMPMC for the default FAA-based implementation.
func NewMPMCSeq[T any](capacity int) *MPMCSeq[T] {
	if capacity < 2 {
		panic("lfq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	q := &MPMCSeq[T]{
		buffer:   make([]mpmcSeqSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (q *MPMCSeq[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = *elem
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element from the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *MPMCSeq[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				return elem, nil
			}
		} else if diff < 0 {
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// Cap returns the queue capacity.
func (q *MPMCSeq[T]) Cap() int {
	return int(q.capacity)
}

// Peek returns the element at the current head without claiming it,
// reporting false if the queue was observed empty. Unlike the FAA-based
// rings in this package, MPMCSeq's CAS-based protocol keeps tail-head
// cheap and accurate, so Peek, Size and IsEmpty below are offered here
// even though the rest of the package's doc comments warn that length is
// generally expensive for lock-free queues; that warning is about the
// FAA+cycle rings, not this one.
func (q *MPMCSeq[T]) Peek() (T, bool) {
	head := q.head.LoadAcquire()
	tail := q.tail.LoadAcquire()
	if tail == head {
		var zero T
		return zero, false
	}
	return q.buffer[head&q.mask].data, true
}

// Size reports the number of elements currently enqueued.
func (q *MPMCSeq[T]) Size() int {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// IsEmpty reports whether the queue currently holds no elements.
func (q *MPMCSeq[T]) IsEmpty() bool {
	return q.tail.LoadAcquire() == q.head.LoadAcquire()
}

// Remove dequeues up to len(dst) elements into dst in FIFO order by
// repeated Dequeue, returning the number copied. MPMCSeq has no single
// batch-claim CAS the way Disruptor does, so this is a loop rather than a
// single range claim; it still returns as soon as the queue runs dry.
func (q *MPMCSeq[T]) Remove(dst []T) int {
	n := 0
	for n < len(dst) {
		e, err := q.Dequeue()
		if err != nil {
			break
		}
		dst[n] = e
		n++
	}
	return n
}

// Contains reports whether v is present anywhere in the currently
// enqueued range. The read is weakly consistent: a concurrent Enqueue or
// Dequeue may cause it to miss or see an element transiently.
func (q *MPMCSeq[T]) Contains(v T, eq func(a, b T) bool) bool {
	head := q.head.LoadAcquire()
	tail := q.tail.LoadAcquire()
	size := int64(tail) - int64(head)
	for i := int64(0); i < size; i++ {
		if eq(q.buffer[(head+uint64(i))&q.mask].data, v) {
			return true
		}
	}
	return false
}

// Clear empties the queue by repeated Dequeue.
func (q *MPMCSeq[T]) Clear() {
	for {
		if _, err := q.Dequeue(); err != nil {
			return
		}
	}
}
