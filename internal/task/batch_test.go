package task

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/mediatask/internal/model"
)

func TestBatch_AllSucceed(t *testing.T) {
	m := NewManager(Options{Workers: 2})
	defer m.Shutdown(true)

	items := []any{"a", "b", "c", "d", "e"}
	var finishedCount int64

	// Each job records how many items had already finished when it started.
	// With strictly sequential rounds of size 2 the snapshot divides items
	// into exactly ceil(5/2) = 3 rounds.
	startSnapshots := make([]int64, len(items))
	var nextSlot int64

	coordinator := NewCoordinator(m, 2)
	result := coordinator.Process(items, func(item any) Job {
		return JobFunc{
			Name: "echo",
			Fn: func(ctx context.Context) (any, error) {
				slot := atomic.AddInt64(&nextSlot, 1) - 1
				startSnapshots[slot] = atomic.LoadInt64(&finishedCount)
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt64(&finishedCount, 1)
				return item, nil
			},
		}
	})

	if result.Total != 5 {
		t.Errorf("Expected total 5, got %d", result.Total)
	}
	if len(result.Completed) != 5 {
		t.Fatalf("Expected 5 completed items, got %d", len(result.Completed))
	}
	if len(result.Failed) != 0 {
		t.Errorf("Expected 0 failed items, got %d", len(result.Failed))
	}

	for _, outcome := range result.Completed {
		if outcome.Result != outcome.Item {
			t.Errorf("Expected result %v to match item %v", outcome.Result, outcome.Item)
		}
		if outcome.TaskID == "" {
			t.Error("Expected completed outcome to carry its task id")
		}
	}

	rounds := make(map[int64]int)
	for _, snapshot := range startSnapshots {
		rounds[snapshot/2]++
	}
	if len(rounds) != 3 {
		t.Errorf("Expected submissions in exactly 3 rounds, observed %d (%v)", len(rounds), rounds)
	}
	for round, count := range rounds {
		if count > 2 {
			t.Errorf("Round %d ran %d items, expected at most 2", round, count)
		}
	}
}

func TestBatch_BoundsConcurrency(t *testing.T) {
	m := NewManager(Options{Workers: 4})
	defer m.Shutdown(true)

	var active, highWater int32

	items := []any{1, 2, 3, 4, 5, 6, 7}
	coordinator := NewCoordinator(m, 2)
	coordinator.Process(items, func(item any) Job {
		return JobFunc{
			Name: "counter",
			Fn: func(ctx context.Context) (any, error) {
				n := atomic.AddInt32(&active, 1)
				for {
					hw := atomic.LoadInt32(&highWater)
					if n <= hw || atomic.CompareAndSwapInt32(&highWater, hw, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil, nil
			},
		}
	})

	if hw := atomic.LoadInt32(&highWater); hw > 2 {
		t.Errorf("Expected at most 2 concurrently active items, observed %d", hw)
	}
}

func TestBatch_AggregatesFailures(t *testing.T) {
	m := NewManager(Options{Workers: 2})
	defer m.Shutdown(true)

	items := []any{0, 1, 2, 3}
	coordinator := NewCoordinator(m, 2)
	result := coordinator.Process(items, func(item any) Job {
		return JobFunc{
			Name: "odd-fails",
			Fn: func(ctx context.Context) (any, error) {
				if item.(int)%2 == 1 {
					return nil, fmt.Errorf("item %d rejected", item)
				}
				return item, nil
			},
		}
	})

	if len(result.Completed) != 2 {
		t.Errorf("Expected 2 completed items, got %d", len(result.Completed))
	}
	if len(result.Failed) != 2 {
		t.Fatalf("Expected 2 failed items, got %d", len(result.Failed))
	}

	for _, outcome := range result.Failed {
		if outcome.Err == nil {
			t.Errorf("Expected failed item %v to carry an error", outcome.Item)
		}
	}
}

func TestBatch_RoundTimeout(t *testing.T) {
	m := NewManager(Options{Workers: 2})
	defer m.Shutdown(true)

	coordinator := NewCoordinator(m, 2)
	coordinator.RoundTimeout = 100 * time.Millisecond

	result := coordinator.Process([]any{"stuck"}, func(item any) Job {
		return JobFunc{
			Name: "stuck",
			Fn: func(ctx context.Context) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
	})

	if len(result.Failed) != 1 {
		t.Fatalf("Expected 1 failed item, got %d", len(result.Failed))
	}
	if !errors.Is(result.Failed[0].Err, ErrBatchTimeout) {
		t.Errorf("Expected ErrBatchTimeout, got %v", result.Failed[0].Err)
	}
}

func TestBatch_DefaultSizeFromWorkers(t *testing.T) {
	m := NewManager(Options{Workers: 3})
	defer m.Shutdown(true)

	coordinator := NewCoordinator(m, 0)
	if coordinator.size != 3 {
		t.Errorf("Expected batch size to default to worker count 3, got %d", coordinator.size)
	}
}

func TestBatch_OverallProgress(t *testing.T) {
	m := NewManager(Options{Workers: 2})
	defer m.Shutdown(true)

	var last atomic.Value
	coordinator := NewCoordinator(m, 2)
	coordinator.OnProgress = func(overall float64) {
		last.Store(overall)
	}

	coordinator.Process([]any{"x", "y"}, func(item any) Job {
		return ProgressJobFunc{
			Name: "half",
			Fn: func(ctx context.Context, sink model.ProgressSink) (any, error) {
				sink(model.Progress{Percentage: 100})
				return item, nil
			},
		}
	})

	overall, ok := last.Load().(float64)
	if !ok {
		t.Fatal("Expected OnProgress to be invoked")
	}
	if overall < 0 || overall > 100 {
		t.Errorf("Expected overall progress within [0,100], got %f", overall)
	}
}
