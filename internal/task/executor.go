package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Executor kinds
const (
	// ExecutorGoroutine runs jobs on a fixed set of worker goroutines
	// sharing one queue. This is the default strategy.
	ExecutorGoroutine = "goroutine"

	// ExecutorOSThread runs each job on its own OS thread, bounded by a
	// semaphore. Opt-in for CPU-heavy transcode jobs.
	ExecutorOSThread = "osthread"
)

// Executor runs submitted functions with at most MaxWorkers concurrently
// in-flight, queueing the remainder. Implementations share the Handle
// abstraction; the manager is written against this interface only.
type Executor interface {
	// Submit schedules run for asynchronous execution. onDone is invoked
	// exactly once when the returned handle finishes, whatever the outcome.
	Submit(run func(ctx context.Context) (any, error), onDone func(*Handle)) (*Handle, error)

	// Kind identifies the execution strategy for statistics
	Kind() string

	// MaxWorkers returns the pool's concurrency limit
	MaxWorkers() int

	// ActiveWorkers returns the number of jobs currently executing
	ActiveWorkers() int

	// Shutdown stops the executor. With wait=true it blocks until every
	// worker has stopped; queued handles already cancelled are skipped.
	Shutdown(wait bool)
}

// NewExecutor creates an executor of the given kind. An empty kind selects
// the goroutine pool.
func NewExecutor(kind string, workers int) (Executor, error) {
	switch kind {
	case "", ExecutorGoroutine:
		return newGoroutinePool(workers), nil
	case ExecutorOSThread:
		return newOSThreadPool(workers), nil
	default:
		return nil, fmt.Errorf("unknown executor kind: %s", kind)
	}
}

type workItem struct {
	handle *Handle
	ctx    context.Context
	run    func(ctx context.Context) (any, error)
}

// goroutinePool is the default execution strategy: a fixed set of worker
// goroutines draining an unbounded FIFO queue.
type goroutinePool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*workItem
	closed bool

	workers int
	active  atomic.Int32
	wg      sync.WaitGroup
}

func newGoroutinePool(workers int) *goroutinePool {
	p := &goroutinePool{workers: workers}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *goroutinePool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		item := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		// Skip handles cancelled while queued
		if !item.handle.begin() {
			continue
		}

		p.active.Add(1)
		result, err := runRecovered(item.ctx, item.run)
		p.active.Add(-1)

		item.handle.tryFinish(stateRunning, result, err)
	}
}

// Submit schedules run on the pool queue
func (p *goroutinePool) Submit(run func(ctx context.Context) (any, error), onDone func(*Handle)) (*Handle, error) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHandle(cancel, onDone)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		cancel()
		return nil, ErrShutdown
	}
	p.queue = append(p.queue, &workItem{handle: h, ctx: ctx, run: run})
	p.mu.Unlock()

	p.cond.Signal()
	return h, nil
}

// Kind identifies the strategy
func (p *goroutinePool) Kind() string { return ExecutorGoroutine }

// MaxWorkers returns the worker count
func (p *goroutinePool) MaxWorkers() int { return p.workers }

// ActiveWorkers returns the number of jobs currently executing
func (p *goroutinePool) ActiveWorkers() int { return int(p.active.Load()) }

// Shutdown stops the pool. Workers drain the remaining queue (cancelled
// handles are skipped) and exit.
func (p *goroutinePool) Shutdown(wait bool) {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cond.Broadcast()
	if wait {
		p.wg.Wait()
	}
}

// runRecovered executes run and converts a panic into an error so a failing
// job can never take down its worker.
func runRecovered(ctx context.Context, run func(ctx context.Context) (any, error)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("job panic recovered: %v", r)
			err = fmt.Errorf("job panic: %v", r)
		}
	}()

	return run(ctx)
}
