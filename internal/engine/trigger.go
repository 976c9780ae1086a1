package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/crewgrid/crewgrid/internal/queue"
	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// Service is the control surface for submitting goals and overriding
// roster state. Goals normally go through the durable queue; with no
// queue configured they run inline on a background goroutine, trading
// durability for availability.
type Service struct {
	queue  queue.Queue
	runner *Runner
	store  store.Store
}

// NewService creates a Service. q may be nil, in which case submitted
// goals run inline instead of through the queue.
func NewService(q queue.Queue, runner *Runner, st store.Store) *Service {
	return &Service{queue: q, runner: runner, store: st}
}

// SubmitGoal submits a goal for execution. It prefers the durable
// queue; with no queue, or when the enqueue fails, the goal runs
// inline on a background goroutine instead of being lost. The queued
// result reports which path was taken.
func (s *Service) SubmitGoal(ctx context.Context, goal string, priority int, assignedTo []string) (id string, queued bool, err error) {
	if goal == "" {
		return "", false, fmt.Errorf("goal must not be empty")
	}

	if s.queue != nil {
		id, err := s.queue.Enqueue(ctx, goal, priority, assignedTo)
		if err == nil {
			log.Printf("[engine] enqueued goal %s", id)
			return id, true, nil
		}
		log.Printf("[engine] enqueue failed, running goal inline: %v", err)
	}

	id = uuid.NewString()
	go func() {
		// Detached from the caller: the submission returns
		// immediately while the run proceeds.
		if err := s.runner.Run(context.Background(), goal); err != nil {
			log.Printf("[engine] inline goal %s failed: %v", id, err)
		}
	}()
	return id, false, nil
}

// OverrideWorkers forces every worker to the given status and room and
// records the override, with an optional note, in the activity log.
func (s *Service) OverrideWorkers(ctx context.Context, status models.WorkerStatus, room models.Room, note string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid worker status %q", status)
	}
	if !room.Valid() {
		return fmt.Errorf("invalid room %q", room)
	}
	if err := s.store.BulkUpdateWorkers(ctx, status, room); err != nil {
		return fmt.Errorf("bulk update workers: %w", err)
	}
	details := map[string]any{
		"status": string(status),
		"room":   string(room),
	}
	if note != "" {
		details["note"] = note
	}
	return s.store.LogActivity(ctx, "system", "state_override", details)
}
