package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crewgrid/crewgrid/pkg/models"
)

// Default stream naming, shared with any other consumers of the queue.
const (
	DefaultStream = "crewgrid:goal_queue"
	DefaultGroup  = "crewgrid_workers"
)

// Redis is a durable queue on a Redis Stream consumed through a
// consumer group, so a crash before Ack causes redelivery to the next
// consumer rather than message loss.
type Redis struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
}

// NewRedis builds a Redis-backed queue. consumer names this process
// within the group; each running engine instance needs a distinct one.
func NewRedis(client *redis.Client, stream, group, consumer string) *Redis {
	if stream == "" {
		stream = DefaultStream
	}
	if group == "" {
		group = DefaultGroup
	}
	return &Redis{client: client, stream: stream, group: group, consumer: consumer}
}

// EnsureGroup creates the consumer group (and stream) if missing.
// An already-existing group is not an error.
func (q *Redis) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Enqueue appends a goal to the stream and returns the message id.
func (q *Redis) Enqueue(ctx context.Context, goal string, priority int, assignedTo []string) (string, error) {
	assigned, err := json.Marshal(assignedTo)
	if err != nil {
		return "", fmt.Errorf("encode assigned_to: %w", err)
	}
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"goal":        goal,
			"priority":    strconv.Itoa(priority),
			"assigned_to": string(assigned),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue goal: %w", err)
	}
	return id, nil
}

// Dequeue reads up to count new items for this consumer, blocking up
// to block when the stream is empty.
func (q *Redis) Dequeue(ctx context.Context, count int, block time.Duration) ([]models.QueueItem, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    int64(count),
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read goal stream: %w", err)
	}

	var items []models.QueueItem
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			items = append(items, decodeItem(msg))
		}
	}
	return items, nil
}

func decodeItem(msg redis.XMessage) models.QueueItem {
	item := models.QueueItem{ID: msg.ID}
	if goal, ok := msg.Values["goal"].(string); ok {
		item.Goal = goal
	}
	if raw, ok := msg.Values["priority"].(string); ok {
		if p, err := strconv.Atoi(raw); err == nil {
			item.Priority = p
		}
	}
	if raw, ok := msg.Values["assigned_to"].(string); ok && raw != "" {
		// A malformed hint is ignored rather than failing the read.
		_ = json.Unmarshal([]byte(raw), &item.AssignedTo)
	}
	return item
}

// Ack acknowledges a handled item in the consumer group.
func (q *Redis) Ack(ctx context.Context, id string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, id).Err(); err != nil {
		return fmt.Errorf("ack %s: %w", id, err)
	}
	return nil
}

// Compile-time verification that both implementations satisfy the port.
var (
	_ Queue = (*Redis)(nil)
	_ Queue = (*Memory)(nil)
)
