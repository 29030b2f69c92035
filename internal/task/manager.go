package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mediatask/internal/model"
)

// Defaults and identifiers
const (
	DefaultWorkers = 4

	TaskIDPrefix = "task-"
)

// Options configure a Manager. The surrounding application resolves
// defaults once at startup and passes them in; the core reads no global
// configuration.
type Options struct {
	Workers  int    // pool size, DefaultWorkers when <= 0
	Executor string // ExecutorGoroutine (default) or ExecutorOSThread
}

// Manager is the orchestration façade over the worker pool. It owns the only
// mutable shared map of task bookkeeping and mediates all submission,
// inspection, and cancellation. The lock is held for map mutation only,
// never across a job's execution.
type Manager struct {
	mu      sync.Mutex
	opts    Options
	exec    Executor
	records map[string]*model.TaskRecord
	handles map[string]*Handle
	closed  bool
}

// NewManager creates a manager. The pool itself is created lazily on the
// first Submit, or explicitly via Start.
func NewManager(opts Options) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Executor == "" {
		opts.Executor = ExecutorGoroutine
	}

	return &Manager{
		opts:    opts,
		records: make(map[string]*model.TaskRecord),
		handles: make(map[string]*Handle),
	}
}

// Start initializes the worker pool. Calling Start on an already started
// manager is a no-op.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exec != nil {
		log.Warn("task manager already started")
		return nil
	}

	return m.startLocked()
}

// startLocked creates the executor. Callers must hold the lock and have
// checked that no executor exists yet.
func (m *Manager) startLocked() error {
	if m.closed {
		return ErrShutdown
	}

	exec, err := NewExecutor(m.opts.Executor, m.opts.Workers)
	if err != nil {
		return fmt.Errorf("create executor: %w", err)
	}
	m.exec = exec

	log.WithFields(log.Fields{
		"workers":  m.opts.Workers,
		"executor": exec.Kind(),
	}).Info("task manager started")

	return nil
}

// Submit hands a job to the pool for asynchronous execution and returns its
// task id immediately. The manager auto-starts on first use; if the pool
// cannot be created, or the manager was shut down, no record is created and
// the error is returned to the caller.
func (m *Manager) Submit(job Job) (string, error) {
	return m.SubmitWithProgress(job, nil)
}

// SubmitWithProgress is Submit with a caller-provided progress sink. The
// sink is invoked after the record's progress field has been updated; a
// panicking sink is logged and swallowed, never propagated to the job.
func (m *Manager) SubmitWithProgress(job Job, sink model.ProgressSink) (string, error) {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return "", ErrShutdown
	}
	if m.exec == nil {
		if err := m.startLocked(); err != nil {
			m.mu.Unlock()
			return "", fmt.Errorf("submit task: %w", err)
		}
	}

	id := newTaskID()
	record := &model.TaskRecord{
		ID:     id,
		Label:  job.Label(),
		Status: model.TaskStatusPending,
	}

	handle, err := m.exec.Submit(m.buildRun(id, job, sink), func(h *Handle) {
		m.observeDone(id, h)
	})
	if err != nil {
		m.mu.Unlock()
		return "", fmt.Errorf("submit task: %w", err)
	}

	m.records[id] = record
	m.handles[id] = handle
	m.mu.Unlock()

	log.WithFields(log.Fields{"task": id, "label": record.Label}).Debug("task submitted")

	return id, nil
}

// buildRun wraps the job body: mark the record running, then dispatch to the
// progress variant when the job implements it.
func (m *Manager) buildRun(id string, job Job, sink model.ProgressSink) func(ctx context.Context) (any, error) {
	wrapped := m.wrapSink(id, sink)

	return func(ctx context.Context) (any, error) {
		m.mu.Lock()
		if record, ok := m.records[id]; ok && !record.Status.IsTerminal() {
			record.Status = model.TaskStatusRunning
			record.StartedAt = time.Now()
		}
		m.mu.Unlock()

		if pj, ok := job.(ProgressJob); ok {
			return pj.RunWithProgress(ctx, wrapped)
		}
		return job.Run(ctx)
	}
}

// wrapSink updates the record's progress before invoking the caller's sink.
func (m *Manager) wrapSink(id string, sink model.ProgressSink) model.ProgressSink {
	return func(p model.Progress) {
		if p.Percentage < 0 {
			p.Percentage = 0
		} else if p.Percentage > 100 {
			p.Percentage = 100
		}

		m.mu.Lock()
		if record, ok := m.records[id]; ok && !record.Status.IsTerminal() {
			record.Progress = p.Percentage
		}
		m.mu.Unlock()

		if sink == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				log.WithField("task", id).Warnf("progress callback panic: %v", r)
			}
		}()
		sink(p)
	}
}

// observeDone records a handle's outcome on its task record. Cancellation
// wins once signaled: an already-terminal record is never overwritten.
func (m *Manager) observeDone(id string, h *Handle) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("task", id).Errorf("completion observer panic: %v", r)
		}
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok || record.Status.IsTerminal() {
		return
	}

	record.EndedAt = time.Now()

	switch {
	case h.err == nil:
		record.Status = model.TaskStatusCompleted
		record.Result = h.result
		record.Progress = 100
		log.WithField("task", id).Debug("task completed")
	case errors.Is(h.err, ErrCancelled) || errors.Is(h.err, context.Canceled):
		record.Status = model.TaskStatusCancelled
		log.WithField("task", id).Debug("task cancelled")
	default:
		record.Status = model.TaskStatusFailed
		record.Error = h.err.Error()
		log.WithFields(log.Fields{"task": id, "error": record.Error}).Debug("task failed")
	}
}

// Status returns a point-in-time snapshot of one task, or false if the id
// is unknown.
func (m *Manager) Status(id string) (*model.TaskRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return nil, false
	}

	snapshot := *record
	return &snapshot, true
}

// List returns a copy of all task records keyed by id.
func (m *Manager) List() map[string]*model.TaskRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*model.TaskRecord, len(m.records))
	for id, record := range m.records {
		snapshot := *record
		out[id] = &snapshot
	}
	return out
}

// Cancel requests cancellation of a task. Guaranteed for tasks still queued;
// cooperative for running tasks, whose outcome is still recorded when they
// run to completion. Returns false if the task is unknown or already
// terminal.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	record, ok := m.records[id]
	if !ok || record.Status.IsTerminal() {
		m.mu.Unlock()
		return false
	}
	handle := m.handles[id]
	m.mu.Unlock()

	if handle == nil || !handle.Cancel() {
		return false
	}

	log.WithField("task", id).Debug("task cancellation requested")
	return true
}

// Wait blocks the caller until the given tasks reach a terminal state or the
// timeout elapses. A nil ids slice waits for all currently outstanding
// tasks; timeout <= 0 waits without limit. On timeout only the subset
// already terminal is returned and callers must re-poll for the rest. The
// bookkeeping lock is never held while waiting.
func (m *Manager) Wait(ids []string, timeout time.Duration) map[string]*model.TaskRecord {
	m.mu.Lock()
	if ids == nil {
		for id, record := range m.records {
			if !record.Status.IsTerminal() {
				ids = append(ids, id)
			}
		}
	}
	handles := make(map[string]*Handle, len(ids))
	for _, id := range ids {
		if h, ok := m.handles[id]; ok {
			handles[id] = h
		}
	}
	m.mu.Unlock()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	out := make(map[string]*model.TaskRecord, len(handles))
	for id, h := range handles {
		select {
		case <-h.Done():
			if record, ok := m.Status(id); ok {
				out[id] = record
			}
		case <-deadline:
			log.Warnf("wait for completion timed out after %s", timeout)
			return m.collectFinished(handles, out)
		}
	}
	return out
}

// collectFinished sweeps the remaining handles once so the timeout result
// includes every task that is already terminal.
func (m *Manager) collectFinished(handles map[string]*Handle, out map[string]*model.TaskRecord) map[string]*model.TaskRecord {
	for id, h := range handles {
		if _, seen := out[id]; seen {
			continue
		}
		if !h.IsDone() {
			continue
		}
		if record, ok := m.Status(id); ok && record.Status.IsTerminal() {
			out[id] = record
		}
	}
	return out
}

// Shutdown cancels every non-terminal task and releases the worker pool.
// With wait=true it blocks until all workers have stopped; otherwise
// cancellation signals are issued and handles finish asynchronously, with
// later Status calls reflecting the eventual terminal states. Submissions
// after Shutdown fail fast with ErrShutdown.
func (m *Manager) Shutdown(wait bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	exec := m.exec

	pending := make([]*Handle, 0, len(m.handles))
	for id, h := range m.handles {
		if record := m.records[id]; record != nil && !record.Status.IsTerminal() {
			pending = append(pending, h)
		}
	}
	m.mu.Unlock()

	if len(pending) > 0 {
		log.Infof("cancelling %d outstanding tasks", len(pending))
	}
	for _, h := range pending {
		h.Cancel()
	}

	if exec != nil {
		exec.Shutdown(wait)
	}

	log.Info("task manager stopped")
}

// newTaskID generates a unique task ID using UUID v7 for better uniqueness
// and time ordering.
func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
