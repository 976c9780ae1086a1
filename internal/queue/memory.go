package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crewgrid/crewgrid/pkg/models"
)

// Memory is an in-process Queue used by tests. It preserves FIFO
// order and tracks acknowledgments per id.
type Memory struct {
	mu      sync.Mutex
	items   []models.QueueItem
	acked   map[string]int
	seq     int
	failure error
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{acked: make(map[string]int)}
}

// FailWith makes every subsequent call return err until cleared with nil.
func (q *Memory) FailWith(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failure = err
}

func (q *Memory) Enqueue(_ context.Context, goal string, priority int, assignedTo []string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failure != nil {
		return "", q.failure
	}
	q.seq++
	item := models.QueueItem{
		ID:         fmt.Sprintf("mem-%d", q.seq),
		Goal:       goal,
		Priority:   priority,
		AssignedTo: assignedTo,
	}
	q.items = append(q.items, item)
	return item.ID, nil
}

func (q *Memory) Dequeue(_ context.Context, count int, _ time.Duration) ([]models.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failure != nil {
		return nil, q.failure
	}
	if count <= 0 || len(q.items) == 0 {
		return nil, nil
	}
	if count > len(q.items) {
		count = len(q.items)
	}
	batch := make([]models.QueueItem, count)
	copy(batch, q.items[:count])
	q.items = q.items[count:]
	return batch, nil
}

func (q *Memory) Ack(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failure != nil {
		return q.failure
	}
	q.acked[id]++
	return nil
}

// AckCount is a test helper: how many times id has been acknowledged.
func (q *Memory) AckCount(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.acked[id]
}

// Len is a test helper: how many items remain unread.
func (q *Memory) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
