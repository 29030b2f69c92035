package task

import "sync"

// Tracker aggregates per-task progress into an overall percentage. Safe for
// concurrent use by multiple progress sinks.
type Tracker struct {
	mu       sync.Mutex
	progress map[string]float64
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{progress: make(map[string]float64)}
}

// Track registers a key at zero progress
func (t *Tracker) Track(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress[key] = 0
}

// Update records the latest percentage for a key
func (t *Tracker) Update(key string, percentage float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.progress[key]; ok {
		t.progress[key] = percentage
	}
}

// Forget stops tracking a key
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.progress, key)
}

// Overall returns the mean percentage across all tracked keys, 0 when
// nothing is tracked.
func (t *Tracker) Overall() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.progress) == 0 {
		return 0
	}

	var total float64
	for _, p := range t.progress {
		total += p
	}
	return total / float64(len(t.progress))
}
