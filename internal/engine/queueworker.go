package engine

import (
	"context"
	"log"
	"time"

	"github.com/crewgrid/crewgrid/internal/queue"
	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// readBackoff is how long the worker waits after a dequeue error
// before polling again.
const readBackoff = 2 * time.Second

// QueueWorker consumes the durable goal queue and runs each goal
// through the Runner. Items are acknowledged whether or not the run
// succeeded: a poisoned goal is logged and dropped, never redelivered
// in a loop. Redelivery happens only for items dequeued but never
// acknowledged, e.g. when the process dies mid-run.
type QueueWorker struct {
	queue  queue.Queue
	runner *Runner
	store  store.Store
	block  time.Duration
}

// NewQueueWorker creates a QueueWorker reading with the given blocking
// dequeue timeout.
func NewQueueWorker(q queue.Queue, runner *Runner, st store.Store, block time.Duration) *QueueWorker {
	return &QueueWorker{queue: q, runner: runner, store: st, block: block}
}

// Run consumes the queue until ctx is cancelled.
func (w *QueueWorker) Run(ctx context.Context) {
	log.Printf("[queueworker] goal queue consumer started")
	for {
		select {
		case <-ctx.Done():
			log.Printf("[queueworker] goal queue consumer shutting down")
			return
		default:
		}

		items, err := w.queue.Dequeue(ctx, 1, w.block)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[queueworker] goal queue consumer shutting down")
				return
			}
			log.Printf("[queueworker] dequeue failed: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(readBackoff):
			}
			continue
		}

		for _, item := range items {
			w.handle(ctx, item)
		}
	}
}

// handle runs one queue item and acknowledges it unconditionally.
func (w *QueueWorker) handle(ctx context.Context, item models.QueueItem) {
	log.Printf("[queueworker] picked up goal %s", item.ID)

	if err := w.runner.Run(ctx, item.Goal); err != nil {
		log.Printf("[queueworker] goal %s failed: %v", item.ID, err)
		if lerr := w.store.LogActivity(ctx, "system", "task_queue_error", map[string]any{
			"task_id": item.ID,
			"goal":    item.Goal,
			"error":   err.Error(),
		}); lerr != nil {
			log.Printf("[queueworker] failed to log queue error: %v", lerr)
		}
	}

	if err := w.queue.Ack(ctx, item.ID); err != nil {
		log.Printf("[queueworker] ack failed for %s: %v", item.ID, err)
	}
}
