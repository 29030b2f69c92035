package task

import (
	"context"
	"sync/atomic"
)

// Handle states
const (
	stateQueued int32 = iota
	stateRunning
	stateDone
)

// Handle tracks one unit of execution submitted to an Executor. Both
// executor strategies expose the same handle: cancellation, a done channel,
// the outcome, and a completion notification registered at submit time.
//
// The state field is advanced only through compare-and-swap, so exactly one
// of the worker and a concurrent Cancel call performs the terminal
// transition. A finished handle can never be re-marked cancelled.
type Handle struct {
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	result any
	err    error

	onDone func(*Handle) // invoked exactly once, before done is closed
}

func newHandle(cancel context.CancelFunc, onDone func(*Handle)) *Handle {
	return &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
		onDone: onDone,
	}
}

// begin marks the handle running. Returns false if the handle was cancelled
// while still queued; the worker must then skip it.
func (h *Handle) begin() bool {
	return h.state.CompareAndSwap(stateQueued, stateRunning)
}

// tryFinish records the outcome if the handle is still in the given state.
// The completion notification runs before the done channel is closed, so a
// waiter woken by Done always observes the bookkeeping of the notification.
func (h *Handle) tryFinish(from int32, result any, err error) bool {
	if !h.state.CompareAndSwap(from, stateDone) {
		return false
	}
	h.result = result
	h.err = err
	if h.onDone != nil {
		h.onDone(h)
	}
	close(h.done)
	return true
}

// Cancel requests cancellation. A handle still queued finishes immediately
// as cancelled (guaranteed). A running handle gets its context cancelled,
// which is cooperative: the job must honor ctx for the interrupt to take
// effect. Returns false if the handle already finished.
func (h *Handle) Cancel() bool {
	if h.tryFinish(stateQueued, nil, ErrCancelled) {
		h.cancel()
		return true
	}
	if h.state.Load() == stateRunning {
		h.cancel()
		return true
	}
	return false
}

// IsDone returns true once the handle reached its terminal state
func (h *Handle) IsDone() bool {
	return h.state.Load() == stateDone
}

// Done returns a channel closed when the handle finishes
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result blocks until the handle finishes and returns its outcome.
func (h *Handle) Result() (any, error) {
	<-h.done
	return h.result, h.err
}
