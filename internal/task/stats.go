package task

import "github.com/ytget/mediatask/internal/model"

// Stats is the aggregate health snapshot consumed by front-ends. Every
// record contributes to exactly one of the five status counters, so
// Pending+Running+Completed+Failed+Cancelled always equals Submitted.
type Stats struct {
	Submitted int
	Completed int
	Failed    int
	Cancelled int
	Running   int
	Pending   int

	ActiveWorkers int
	MaxWorkers    int
	ExecutorKind  string
}

// Statistics computes the current counters from the record snapshot plus
// pool introspection.
func (m *Manager) Statistics() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{Submitted: len(m.records)}

	for _, record := range m.records {
		switch record.Status {
		case model.TaskStatusPending:
			st.Pending++
		case model.TaskStatusRunning:
			st.Running++
		case model.TaskStatusCompleted:
			st.Completed++
		case model.TaskStatusFailed:
			st.Failed++
		case model.TaskStatusCancelled:
			st.Cancelled++
		}
	}

	if m.exec != nil {
		st.ActiveWorkers = m.exec.ActiveWorkers()
		st.MaxWorkers = m.exec.MaxWorkers()
		st.ExecutorKind = m.exec.Kind()
	} else {
		st.MaxWorkers = m.opts.Workers
		st.ExecutorKind = m.opts.Executor
	}

	return st
}
