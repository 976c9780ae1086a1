// Package store provides persistence for workers, tasks, messages, and
// the activity log. The production implementation is SQLite; Memory is
// an in-process double for tests.
package store

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/crewgrid/crewgrid/pkg/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Activity is one append-only activity log entry.
type Activity struct {
	// ID is the unique identifier for this entry.
	ID string `json:"id"`
	// WorkerID is the worker the entry concerns ("system" for engine events).
	WorkerID string `json:"worker_id"`
	// Action names the event, e.g. "task_completed" or "graph_error".
	Action string `json:"action"`
	// Details holds structured context for the event.
	Details map[string]any `json:"details,omitempty"`
	// CreatedAt is when the entry was written.
	CreatedAt time.Time `json:"created_at"`
}

// WorkerStore handles worker persistence operations.
type WorkerStore interface {
	GetWorker(ctx context.Context, id string) (*models.Worker, error)
	ListWorkers(ctx context.Context) ([]models.Worker, error)
	// UpsertWorker creates the worker, or replaces its roster fields if
	// it already exists. Used by roster seeding at startup.
	UpsertWorker(ctx context.Context, w models.Worker) error
	// UpdateWorker applies the non-nil fields of upd to the worker.
	UpdateWorker(ctx context.Context, id string, upd models.WorkerUpdate) error
	// BulkUpdateWorkers moves every worker to the given status and room.
	BulkUpdateWorkers(ctx context.Context, status models.WorkerStatus, room models.Room) error
}

// TaskStore handles task persistence operations.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	// ListTasksForWorker returns the tasks assigned to the worker,
	// ordered by priority descending then creation time descending.
	ListTasksForWorker(ctx context.Context, workerID string) ([]models.Task, error)
	// CreateTask persists the task and its assignments, returning the id.
	CreateTask(ctx context.Context, t models.Task) (string, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error
}

// MessageStore handles the append-only message log.
type MessageStore interface {
	CreateMessage(ctx context.Context, from, to, content string, kind models.MessageKind) (string, error)
	ListRecentMessages(ctx context.Context, limit int) ([]models.Message, error)
}

// ActivityLog handles the append-only activity log.
type ActivityLog interface {
	LogActivity(ctx context.Context, workerID, action string, details map[string]any) error
	ListActivity(ctx context.Context, limit int) ([]Activity, error)
}

// Store is the full persistence port consumed by the engine.
// It composes focused sub-interfaces so components can depend on the
// slice they use.
type Store interface {
	io.Closer
	WorkerStore
	TaskStore
	MessageStore
	ActivityLog
}

// Compile-time verification that both implementations satisfy the port.
var (
	_ Store = (*DB)(nil)
	_ Store = (*Memory)(nil)
)
