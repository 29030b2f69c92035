package model

import "time"

// TaskRecord tracks the state of one submitted job. The task manager owns
// the live record; callers only ever see copies.
type TaskRecord struct {
	ID        string
	Label     string // human-readable job kind, e.g. "download-video"
	Status    TaskStatus
	Result    any       // job return value, set only when Status is Completed
	Error     string    // failure cause, set only when Status is Failed
	StartedAt time.Time // when a worker began execution
	EndedAt   time.Time // when the task reached a terminal state
	Progress  float64   // 0 to 100, last value reported by the job
}

// Duration returns the elapsed execution time: final for terminal tasks,
// running total for active ones, zero for tasks that never started.
func (r *TaskRecord) Duration() time.Duration {
	if r.StartedAt.IsZero() {
		return 0
	}
	if r.EndedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.EndedAt.Sub(r.StartedAt)
}
