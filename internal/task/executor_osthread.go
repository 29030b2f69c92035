package task

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// osThreadPool is the opt-in execution strategy for CPU-heavy jobs: each job
// runs on its own goroutine pinned to an OS thread, with a weighted
// semaphore bounding how many are in flight. Queued jobs wait on the
// semaphore, so cancellation before a slot is acquired is guaranteed.
type osThreadPool struct {
	sem     *semaphore.Weighted
	workers int
	active  atomic.Int32

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newOSThreadPool(workers int) *osThreadPool {
	return &osThreadPool{
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
	}
}

// Submit spawns a bounded worker for run
func (p *osThreadPool) Submit(run func(ctx context.Context) (any, error), onDone func(*Handle)) (*Handle, error) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHandle(cancel, onDone)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		cancel()
		return nil, ErrShutdown
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			// Context cancelled while waiting for a slot. Cancel() usually
			// finished the handle already; this covers the running-state
			// interrupt arriving before the slot was acquired.
			h.tryFinish(stateQueued, nil, ErrCancelled)
			return
		}
		defer p.sem.Release(1)

		if !h.begin() {
			return
		}

		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		p.active.Add(1)
		result, err := runRecovered(ctx, run)
		p.active.Add(-1)

		h.tryFinish(stateRunning, result, err)
	}()

	return h, nil
}

// Kind identifies the strategy
func (p *osThreadPool) Kind() string { return ExecutorOSThread }

// MaxWorkers returns the concurrency limit
func (p *osThreadPool) MaxWorkers() int { return p.workers }

// ActiveWorkers returns the number of jobs currently executing
func (p *osThreadPool) ActiveWorkers() int { return int(p.active.Load()) }

// Shutdown stops accepting work. With wait=true it blocks until every
// spawned worker has returned.
func (p *osThreadPool) Shutdown(wait bool) {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	if wait {
		p.wg.Wait()
	}
}
