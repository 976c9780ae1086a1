// Package specialist implements the roster of workflow specialists.
// Each wraps one opaque capability behind the workflow.Specialist port
// and performs that worker's persistent side effects (tasks, messages,
// status transitions). The capability funcs are injectable; the
// defaults are deterministic stand-ins for the external calls.
package specialist

import (
	"context"
	"fmt"
	"log"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// base carries the shared identity and lifecycle of a specialist.
// The lifecycle is: flip the worker to Working in its default room,
// run the specialist body, then settle to Idle on success or Error on
// failure. A body failure is recorded in the run state, not returned,
// so the graph can still route to the health check.
type base struct {
	id    string
	name  string
	role  string
	room  models.Room
	store store.Store
}

// ID returns the worker id this specialist serves.
func (b base) ID() string { return b.id }

// run executes body inside the worker lifecycle.
func (b base) run(ctx context.Context, state *workflow.State, body func(context.Context, *workflow.State) error) error {
	err := b.store.UpdateWorker(ctx, b.id, models.WorkerUpdate{
		Room:   models.RoomPtr(b.room),
		Status: models.StatusPtr(models.StatusWorking),
		Note:   models.StringPtr(fmt.Sprintf("Preparing %s response", b.role)),
	})
	if err != nil {
		return b.fail(ctx, state, err)
	}

	if err := body(ctx, state); err != nil {
		return b.fail(ctx, state, err)
	}

	err = b.store.UpdateWorker(ctx, b.id, models.WorkerUpdate{
		Status:      models.StatusPtr(models.StatusIdle),
		CurrentTask: models.StringPtr(""),
		Note:        models.StringPtr(fmt.Sprintf("Task complete. %s work finished.", b.role)),
	})
	if err != nil {
		return b.fail(ctx, state, err)
	}

	if err := b.store.LogActivity(ctx, b.id, b.id+"_complete", nil); err != nil {
		log.Printf("[specialist] %s: log activity: %v", b.id, err)
	}
	return nil
}

// fail settles the worker into Error state and records the failure in
// the run state. The returned error is always nil: specialist failures
// travel through State.Err so one failed node blocks only its task.
func (b base) fail(ctx context.Context, state *workflow.State, cause error) error {
	log.Printf("[specialist] %s failed: %v", b.id, cause)

	msg := cause.Error()
	if len(msg) > 200 {
		msg = msg[:200]
	}
	uerr := b.store.UpdateWorker(ctx, b.id, models.WorkerUpdate{
		Status: models.StatusPtr(models.StatusError),
		Note:   models.StringPtr("Error encountered: " + msg),
	})
	if uerr != nil {
		log.Printf("[specialist] %s: mark error state: %v", b.id, uerr)
	}
	if lerr := b.store.LogActivity(ctx, b.id, b.id+"_error", map[string]any{"error": msg}); lerr != nil {
		log.Printf("[specialist] %s: log error: %v", b.id, lerr)
	}

	if state.Err == "" {
		state.Err = cause.Error()
	}
	return nil
}
