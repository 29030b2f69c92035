package task

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mediatask/internal/model"
)

// BatchOutcome records the result of one batch item.
type BatchOutcome struct {
	Item   any
	TaskID string
	Result any   // set for completed items
	Err    error // set for failed items
}

// BatchResult aggregates the per-item outcomes of a whole batch.
type BatchResult struct {
	Completed []BatchOutcome
	Failed    []BatchOutcome
	Total     int
}

// Coordinator applies one job-shaped operation to every item of a list,
// batchSize items at a time, synchronously round by round: round N+1 does
// not start submitting until round N's wait resolves. It holds no state
// across batches.
type Coordinator struct {
	manager *Manager
	size    int

	// RoundTimeout bounds the wait for each round; items unresolved when it
	// elapses are reported as failed with ErrBatchTimeout and not retried.
	// Zero means no timeout.
	RoundTimeout time.Duration

	// OnProgress, when set, receives the overall batch percentage as
	// individual items report progress.
	OnProgress func(overall float64)
}

// NewCoordinator creates a batch coordinator. A batchSize <= 0 defaults to
// the manager's worker count.
func NewCoordinator(m *Manager, batchSize int) *Coordinator {
	if batchSize <= 0 {
		batchSize = m.opts.Workers
	}
	return &Coordinator{manager: m, size: batchSize}
}

// Process submits makeJob(item) for every item and aggregates the outcomes.
// Items within a round run concurrently up to the batch size; rounds execute
// strictly sequentially.
func (c *Coordinator) Process(items []any, makeJob func(item any) Job) *BatchResult {
	result := &BatchResult{Total: len(items)}
	rounds := (len(items) + c.size - 1) / c.size

	var tracker *Tracker
	if c.OnProgress != nil {
		tracker = NewTracker()
	}

	for start := 0; start < len(items); start += c.size {
		end := min(start+c.size, len(items))
		round := items[start:end]

		log.WithFields(log.Fields{
			"round":  start/c.size + 1,
			"rounds": rounds,
			"items":  len(round),
		}).Info("processing batch round")

		ids := make([]string, 0, len(round))
		itemByID := make(map[string]any, len(round))

		for i, item := range round {
			var sink model.ProgressSink
			if tracker != nil {
				key := fmt.Sprintf("item-%d", start+i)
				tracker.Track(key)
				sink = func(p model.Progress) {
					tracker.Update(key, p.Percentage)
					c.OnProgress(tracker.Overall())
				}
			}

			id, err := c.manager.SubmitWithProgress(makeJob(item), sink)
			if err != nil {
				result.Failed = append(result.Failed, BatchOutcome{Item: item, Err: err})
				continue
			}
			ids = append(ids, id)
			itemByID[id] = item
		}

		finished := c.manager.Wait(ids, c.RoundTimeout)

		for _, id := range ids {
			item := itemByID[id]

			record, ok := finished[id]
			if !ok {
				result.Failed = append(result.Failed, BatchOutcome{Item: item, TaskID: id, Err: ErrBatchTimeout})
				continue
			}

			switch record.Status {
			case model.TaskStatusCompleted:
				result.Completed = append(result.Completed, BatchOutcome{Item: item, TaskID: id, Result: record.Result})
			case model.TaskStatusCancelled:
				result.Failed = append(result.Failed, BatchOutcome{Item: item, TaskID: id, Err: ErrCancelled})
			default:
				result.Failed = append(result.Failed, BatchOutcome{Item: item, TaskID: id, Err: errors.New(record.Error)})
			}
		}
	}

	return result
}
