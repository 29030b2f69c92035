package model

// TaskStatus represents the lifecycle state of a submitted task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusRunning means a worker is executing the task
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusCompleted means the task finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusFailed means the task failed with an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCancelled means the task was cancelled before completing
	TaskStatusCancelled TaskStatus = "Cancelled"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is still executing
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusRunning
}

// IsTerminal returns true if the task reached a final state (completed,
// failed, or cancelled). Terminal states have no outgoing transitions.
func (ts TaskStatus) IsTerminal() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusFailed || ts == TaskStatusCancelled
}
