// Package queue provides the durable goal queue: at-least-once
// delivery with explicit acknowledgment. The production implementation
// rides Redis Streams with a consumer group; Memory is an in-process
// double for tests.
package queue

import (
	"context"
	"time"

	"github.com/crewgrid/crewgrid/pkg/models"
)

// Queue is the durable queue port. Delivery is at-least-once: an item
// dequeued but never acknowledged is redelivered after a restart, and
// consumers must tolerate duplicates.
type Queue interface {
	// Enqueue appends a goal submission and returns its queue id.
	Enqueue(ctx context.Context, goal string, priority int, assignedTo []string) (string, error)
	// Dequeue reads up to count items, blocking up to block when the
	// queue is empty. An empty slice and nil error means the block
	// timed out with nothing to read.
	Dequeue(ctx context.Context, count int, block time.Duration) ([]models.QueueItem, error)
	// Ack marks the item handled so it is not redelivered.
	Ack(ctx context.Context, id string) error
}
