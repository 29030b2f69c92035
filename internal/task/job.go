package task

import (
	"context"

	"github.com/ytget/mediatask/internal/model"
)

// Job is one unit of work submitted to the manager. Run must honor ctx
// cancellation for the task to be cancellable mid-flight; a job that ignores
// ctx keeps its worker slot until it returns.
type Job interface {
	// Label returns the human-readable job kind used for display and
	// statistics, e.g. "download-video".
	Label() string

	// Run executes the job to completion and returns its result.
	Run(ctx context.Context) (any, error)
}

// ProgressJob is a Job that reports incremental progress. The manager detects
// this variant by interface assertion and routes execution through
// RunWithProgress with a sink that is never nil.
type ProgressJob interface {
	Job

	RunWithProgress(ctx context.Context, sink model.ProgressSink) (any, error)
}

// JobFunc adapts a plain function to the Job interface.
type JobFunc struct {
	Name string
	Fn   func(ctx context.Context) (any, error)
}

// Label returns the job name
func (j JobFunc) Label() string { return j.Name }

// Run executes the wrapped function
func (j JobFunc) Run(ctx context.Context) (any, error) { return j.Fn(ctx) }

// ProgressJobFunc adapts a progress-reporting function to the ProgressJob
// interface.
type ProgressJobFunc struct {
	Name string
	Fn   func(ctx context.Context, sink model.ProgressSink) (any, error)
}

// Label returns the job name
func (j ProgressJobFunc) Label() string { return j.Name }

// Run executes the wrapped function with a no-op sink
func (j ProgressJobFunc) Run(ctx context.Context) (any, error) {
	return j.Fn(ctx, func(model.Progress) {})
}

// RunWithProgress executes the wrapped function with the given sink
func (j ProgressJobFunc) RunWithProgress(ctx context.Context, sink model.ProgressSink) (any, error) {
	return j.Fn(ctx, sink)
}
