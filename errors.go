// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Enqueue: the queue is full (backpressure)
// For Dequeue: the queue is empty (no data available)
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if lfq.IsWouldBlock(err) {
//	        backoff.Wait()  // Adaptive backpressure
//	        continue
//	    }
//	    return err  // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// ErrCapacityExhausted is returned by Add when a bounded queue has no room
// and the caller asked for a failure instead of a block. OfferTimeout does
// not use it: a deadline that passes before room opens up is reported as
// (false, nil).
var ErrCapacityExhausted = errors.New("lfq: capacity exhausted")

// ErrEmpty is returned by Element when the queue holds nothing to describe.
var ErrEmpty = errors.New("lfq: queue is empty")

// ErrInterrupted is returned by any blocking operation (Put, Take,
// OfferTimeout, PollTimeout) whose context is canceled or times out before
// the operation could complete. It plays the role the reference
// implementation gives InterruptedException: a cooperative cancellation
// signal, not a queue-state failure.
var ErrInterrupted = errors.New("lfq: interrupted")

// ErrIllegalArgument is returned when DrainInto is asked to drain a
// BlockingQueue into itself.
var ErrIllegalArgument = errors.New("lfq: illegal argument")
