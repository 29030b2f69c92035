package task

import "errors"

var (
	// ErrCancelled marks a task that was cancelled before producing a result
	ErrCancelled = errors.New("task cancelled")

	// ErrShutdown is returned by Submit after the manager has been shut down
	ErrShutdown = errors.New("task manager is shut down")

	// ErrBatchTimeout marks a batch item whose round timed out before the
	// item reached a terminal state
	ErrBatchTimeout = errors.New("batch round timed out")
)
