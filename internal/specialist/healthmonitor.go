package specialist

import (
	"context"
	"fmt"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// HealthMonitor is the roster's immune system: it inspects worker
// states, recovers workers stuck in Error, and fills the run's health
// report. Recovering at least one worker clears the run error.
type HealthMonitor struct {
	base
}

// NewHealthMonitor builds the health monitor over the given store.
func NewHealthMonitor(st store.Store) *HealthMonitor {
	return &HealthMonitor{
		base: base{
			id:    "healthmonitor",
			name:  "Health Monitor",
			role:  "Health Monitor",
			room:  models.RoomServerRoom,
			store: st,
		},
	}
}

// Process implements workflow.Specialist.
func (h *HealthMonitor) Process(ctx context.Context, state *workflow.State) error {
	return h.run(ctx, state, h.execute)
}

func (h *HealthMonitor) execute(ctx context.Context, state *workflow.State) error {
	workers, err := h.store.ListWorkers(ctx)
	if err != nil {
		return fmt.Errorf("list workers: %w", err)
	}

	var online int
	var errored []models.Worker
	for _, w := range workers {
		if w.Status != models.StatusClockedOut {
			online++
		}
		if w.Status == models.StatusError {
			errored = append(errored, w)
		}
	}

	for _, w := range errored {
		err := h.store.UpdateWorker(ctx, w.ID, models.WorkerUpdate{
			Status:      models.StatusPtr(models.StatusIdle),
			CurrentTask: models.StringPtr(""),
			Note:        models.StringPtr("Recovered by Health Monitor. Error cleared."),
		})
		if err != nil {
			return fmt.Errorf("recover %s: %w", w.ID, err)
		}
		if _, err := h.store.CreateMessage(ctx, h.id, w.ID,
			"Recovery complete. Your error has been resolved.", models.KindRecovery); err != nil {
			return fmt.Errorf("notify recovered worker: %w", err)
		}
		if _, err := h.store.CreateMessage(ctx, h.id, "coordinator",
			"Worker "+w.ID+" recovered from Error state.", models.KindStatusReport); err != nil {
			return fmt.Errorf("report recovery: %w", err)
		}
	}

	status := "operational"
	diagnosis := "All workers nominal."
	if len(errored) > 0 {
		status = "recovering"
		diagnosis = fmt.Sprintf("Recovered %d worker(s) from Error state.", len(errored))
	}
	state.Health = workflow.HealthReport{
		Online:       online,
		Errored:      len(errored),
		Recovered:    len(errored),
		SystemStatus: status,
		Diagnosis:    diagnosis,
	}

	// A successful recovery resolves the run error that routed here.
	if len(errored) > 0 {
		state.Err = ""
	}
	return nil
}
