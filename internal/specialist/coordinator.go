package specialist

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// Coordinator is the workflow entry specialist. It asks its Planner to
// decompose the goal, creates one task per subtask (only the first
// enters execution immediately), sends delegation messages, records
// the delegation order in the run state, and convenes a War Room
// meeting when the plan calls for one.
type Coordinator struct {
	base
	planner Planner
}

// NewCoordinator builds the coordinator over the given store and
// planner. A nil planner falls back to the built-in RulePlanner.
func NewCoordinator(st store.Store, planner Planner) *Coordinator {
	if planner == nil {
		planner = RulePlanner{}
	}
	return &Coordinator{
		base: base{
			id:    "coordinator",
			name:  "Coordinator",
			role:  "Coordinator",
			room:  models.RoomPrivateOffice,
			store: st,
		},
		planner: planner,
	}
}

// Process implements workflow.Specialist.
func (c *Coordinator) Process(ctx context.Context, state *workflow.State) error {
	return c.run(ctx, state, c.execute)
}

func (c *Coordinator) execute(ctx context.Context, state *workflow.State) error {
	plan, err := c.planner.Plan(ctx, state.Goal)
	if err != nil {
		return fmt.Errorf("plan goal: %w", err)
	}

	for i, sub := range plan.Subtasks {
		// Only the first delegated task enters execution immediately;
		// the rest wait in the backlog so a worker is never Idle with
		// an In Progress task.
		status := models.TaskStatusBacklog
		if i == 0 {
			status = models.TaskStatusInProgress
		}

		taskID, err := c.store.CreateTask(ctx, models.Task{
			Title:       sub.Title,
			Description: "Delegated by Coordinator from goal: " + state.Goal,
			Status:      status,
			Priority:    sub.Priority,
			CreatedBy:   c.id,
			Assignees:   []string{sub.Worker},
		})
		if err != nil {
			return fmt.Errorf("create delegated task: %w", err)
		}

		if i == 0 {
			err = c.store.UpdateWorker(ctx, sub.Worker, models.WorkerUpdate{
				Status:      models.StatusPtr(models.StatusWorking),
				CurrentTask: models.StringPtr(sub.Title),
				Note:        models.StringPtr("Picked up delegated task: " + sub.Title),
			})
			if err != nil {
				return fmt.Errorf("mark delegate working: %w", err)
			}
		}

		_, err = c.store.CreateMessage(ctx, c.id, sub.Worker, "Task assigned: "+sub.Title, models.KindDelegation)
		if err != nil {
			return fmt.Errorf("send delegation message: %w", err)
		}

		state.Delegated = append(state.Delegated, sub.Worker)
		state.DelegatedTaskIDs = append(state.DelegatedTaskIDs, taskID)
	}

	if plan.Response != "" {
		if _, err := c.store.CreateMessage(ctx, c.id, "user", plan.Response, models.KindChat); err != nil {
			return fmt.Errorf("send direct reply: %w", err)
		}
	}

	if len(plan.MeetingWorkers) > 0 {
		if err := c.conveneMeeting(ctx, state.Goal, plan.MeetingWorkers); err != nil {
			return err
		}
	}

	if len(state.Delegated) > 0 {
		err = c.store.UpdateWorker(ctx, c.id, models.WorkerUpdate{
			CurrentTask: models.StringPtr("Delegated: " + state.Goal),
			Note:        models.StringPtr("Delegated to " + strings.Join(state.Delegated, ", ") + ". Monitoring progress."),
		})
		if err != nil {
			return fmt.Errorf("update coordinator note: %w", err)
		}
	}
	return nil
}

// conveneMeeting pulls the named workers and the coordinator into the
// War Room and announces the meeting to the system. The participants
// stay in Meeting until released; the coordinator itself settles back
// to Idle when its lifecycle completes.
func (c *Coordinator) conveneMeeting(ctx context.Context, goal string, workers []string) error {
	for _, id := range workers {
		err := c.store.UpdateWorker(ctx, id, models.WorkerUpdate{
			Room:   models.RoomPtr(models.RoomWarRoom),
			Status: models.StatusPtr(models.StatusMeeting),
		})
		if err != nil {
			return fmt.Errorf("move %s to meeting: %w", id, err)
		}
	}

	err := c.store.UpdateWorker(ctx, c.id, models.WorkerUpdate{
		Room:   models.RoomPtr(models.RoomWarRoom),
		Status: models.StatusPtr(models.StatusMeeting),
		Note:   models.StringPtr("Meeting in War Room about: " + goal),
	})
	if err != nil {
		return fmt.Errorf("join meeting: %w", err)
	}

	_, err = c.store.CreateMessage(ctx, c.id, "system",
		"Meeting scheduled: "+goal+" with "+strings.Join(workers, ", "),
		models.KindMeeting)
	if err != nil {
		return fmt.Errorf("announce meeting: %w", err)
	}
	return nil
}
