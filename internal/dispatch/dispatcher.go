// Package dispatch drains each worker's persisted task backlog: one
// task at a time per worker, per-worker mutual exclusion, and a
// periodic idle sweep. It also reconciles the task the workflow graph
// executed inline.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// ErrUnknownWorker indicates a task was assigned to a worker id with
// no registered specialist.
var ErrUnknownWorker = errors.New("unknown worker")

// backoff is how long RunForever waits after a sweep error before the
// next tick.
const backoff = 2 * time.Second

// Dispatcher executes assigned tasks and keeps task and worker state
// in sync. All locks are try-locks: a concurrent caller skips the work
// and relies on the next periodic tick rather than waiting.
type Dispatcher struct {
	store    store.Store
	registry *workflow.Registry

	// sweep serializes DispatchIdleWorkers invocations.
	sweep sync.Mutex

	// mu guards locks; each worker lock protects that worker's
	// single-flight invariant across queue draining and finalization.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Dispatcher over the given store and registry.
func New(st store.Store, registry *workflow.Registry) *Dispatcher {
	return &Dispatcher{
		store:    st,
		registry: registry,
		locks:    make(map[string]*sync.Mutex),
	}
}

// workerLock returns the lock for a worker id, creating it on first use.
func (d *Dispatcher) workerLock(workerID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[workerID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[workerID] = lock
	}
	return lock
}

// MoveTaskForward progresses a task through Review to Done. Terminal
// tasks and missing tasks are left untouched.
func (d *Dispatcher) MoveTaskForward(ctx context.Context, taskID string) error {
	task, err := d.store.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if task.Status.Terminal() {
		return nil
	}
	if task.Status != models.TaskStatusReview {
		if err := d.store.UpdateTaskStatus(ctx, taskID, models.TaskStatusReview); err != nil {
			return err
		}
	}
	return d.store.UpdateTaskStatus(ctx, taskID, models.TaskStatusDone)
}

// ExecuteAssignedTask runs one assigned task on its worker's
// specialist and moves the task status progressively. A specialist
// failure blocks the task and notifies; it is not returned as an
// error. Callers must hold the worker's lock.
func (d *Dispatcher) ExecuteAssignedTask(ctx context.Context, workerID string, task models.Task) error {
	if task.ID == "" {
		return nil
	}

	if !d.registry.Has(workerID) {
		log.Printf("[dispatcher] task %s assigned to unknown worker %s", task.ID, workerID)
		if err := d.store.UpdateTaskStatus(ctx, task.ID, models.TaskStatusBlocked); err != nil {
			return err
		}
		// The recipient does not exist, so there is nobody to message.
		if err := d.store.LogActivity(ctx, "system", "task_blocked_unknown_worker", map[string]any{
			"task_id":   task.ID,
			"worker_id": workerID,
		}); err != nil {
			return err
		}
		return fmt.Errorf("task %s: %w: %s", task.ID, ErrUnknownWorker, workerID)
	}

	run := func() error {
		if task.Status != models.TaskStatusInProgress {
			if err := d.store.UpdateTaskStatus(ctx, task.ID, models.TaskStatusInProgress); err != nil {
				return err
			}
		}
		if err := d.store.UpdateWorker(ctx, workerID, models.WorkerUpdate{
			Status:      models.StatusPtr(models.StatusWorking),
			CurrentTask: models.StringPtr(task.Title),
			Note:        models.StringPtr("Executing assigned task: " + task.Title),
		}); err != nil {
			return err
		}

		state := workflow.NewState(task.Goal())
		state.ActiveTasks = []string{task.Title}

		sp, _ := d.registry.Lookup(workerID)
		if err := sp.Process(ctx, state); err != nil {
			return err
		}
		if state.Failed() {
			return errors.New(state.Err)
		}

		if err := d.MoveTaskForward(ctx, task.ID); err != nil {
			return err
		}
		if err := d.notifySuccess(ctx, workerID, task.ID, task.Title, state); err != nil {
			return err
		}
		return d.store.LogActivity(ctx, workerID, "task_completed", map[string]any{
			"task_id": task.ID,
			"title":   task.Title,
		})
	}

	if err := run(); err != nil {
		log.Printf("[dispatcher] task execution failed for %s on %s: %v", workerID, task.ID, err)
		if uerr := d.store.UpdateTaskStatus(ctx, task.ID, models.TaskStatusBlocked); uerr != nil {
			return uerr
		}
		if nerr := d.notifyFailure(ctx, workerID, task.ID, task.Title, err.Error()); nerr != nil {
			return nerr
		}
		return d.store.LogActivity(ctx, "system", "task_blocked_error", map[string]any{
			"task_id":   task.ID,
			"worker_id": workerID,
			"error":     err.Error(),
		})
	}
	return nil
}

// RunWorkerQueue drains pending tasks for a single worker: one task at
// a time, stopping when the worker is no longer idle or nothing is
// pending. A concurrent call on the same worker is a no-op.
func (d *Dispatcher) RunWorkerQueue(ctx context.Context, workerID string) error {
	lock := d.workerLock(workerID)
	if !lock.TryLock() {
		return nil
	}
	defer lock.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		worker, err := d.store.GetWorker(ctx, workerID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if worker.Status.Busy() {
			return nil
		}

		tasks, err := d.store.ListTasksForWorker(ctx, workerID)
		if err != nil {
			return err
		}
		var next *models.Task
		for i := range tasks {
			if tasks[i].Status.Pending() {
				next = &tasks[i]
				break
			}
		}
		if next == nil {
			return nil
		}

		if err := d.ExecuteAssignedTask(ctx, workerID, *next); err != nil {
			if errors.Is(err, ErrUnknownWorker) {
				// The task was blocked; keep draining the rest.
				continue
			}
			return err
		}
	}
}

// DispatchIdleWorkers sweeps every idle registered worker's backlog
// concurrently. A concurrent call is a no-op; one worker's failure
// does not stop the other sweeps.
func (d *Dispatcher) DispatchIdleWorkers(ctx context.Context) error {
	if !d.sweep.TryLock() {
		return nil
	}
	defer d.sweep.Unlock()

	workers, err := d.store.ListWorkers(ctx)
	if err != nil {
		return fmt.Errorf("list workers: %w", err)
	}

	var g errgroup.Group
	for _, w := range workers {
		if w.Status != models.StatusIdle || !d.registry.Has(w.ID) {
			continue
		}
		id := w.ID
		g.Go(func() error {
			if err := d.RunWorkerQueue(ctx, id); err != nil {
				log.Printf("[dispatcher] sweep failed for %s: %v", id, err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// RunForever periodically sweeps idle workers until ctx is cancelled.
// Sweep errors are logged and followed by a short backoff.
func (d *Dispatcher) RunForever(ctx context.Context, interval time.Duration) {
	log.Printf("[dispatcher] task dispatcher started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[dispatcher] task dispatcher shutting down")
			return
		case <-ticker.C:
			if err := d.DispatchIdleWorkers(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[dispatcher] error while dispatching: %v", err)
				select {
				case <-ctx.Done():
					log.Printf("[dispatcher] task dispatcher shutting down")
					return
				case <-time.After(backoff):
				}
			}
		}
	}
}

// FinalizePrimaryTask reconciles the task the graph executed inline
// (the first delegated subtask). The primary worker's lock is taken
// blocking here: finalization must happen, merely serialized against
// an independently draining sweep. No-op if the run delegated nothing.
func (d *Dispatcher) FinalizePrimaryTask(ctx context.Context, result *workflow.State) error {
	if len(result.Delegated) == 0 || len(result.DelegatedTaskIDs) == 0 {
		return nil
	}
	primary := result.Delegated[0]
	taskID := result.DelegatedTaskIDs[0]

	title := "Primary delegated task"
	if task, err := d.store.GetTask(ctx, taskID); err == nil && task.Title != "" {
		title = task.Title
	}

	lock := d.workerLock(primary)
	lock.Lock()
	defer lock.Unlock()

	if result.Failed() {
		if err := d.store.UpdateTaskStatus(ctx, taskID, models.TaskStatusBlocked); err != nil {
			return err
		}
		return d.notifyFailure(ctx, primary, taskID, title, result.Err)
	}

	if err := d.MoveTaskForward(ctx, taskID); err != nil {
		return err
	}
	if err := d.notifySuccess(ctx, primary, taskID, title, result); err != nil {
		return err
	}
	return d.store.LogActivity(ctx, primary, "task_completed", map[string]any{
		"task_id": taskID,
		"title":   title,
	})
}

// notifySuccess reports a completed task to the coordinator and sends
// the user-facing paraphrase.
func (d *Dispatcher) notifySuccess(ctx context.Context, workerID, taskID, title string, result *workflow.State) error {
	if _, err := d.store.CreateMessage(ctx, workerID, "coordinator",
		fmt.Sprintf("Task complete (%s): %s", taskID, title), models.KindTaskComplete); err != nil {
		return err
	}
	_, err := d.store.CreateMessage(ctx, "coordinator", "user",
		completionMessage(workerID, title, result), models.KindChat)
	return err
}

// notifyFailure reports a blocked task to the coordinator and sends
// the user-facing failure paraphrase.
func (d *Dispatcher) notifyFailure(ctx context.Context, workerID, taskID, title, errText string) error {
	if _, err := d.store.CreateMessage(ctx, "system", "coordinator",
		fmt.Sprintf("Task blocked (%s) for %s: %s", taskID, workerID, errText), models.KindError); err != nil {
		return err
	}
	_, err := d.store.CreateMessage(ctx, "coordinator", "user",
		failureMessage(workerID, title, errText), models.KindChat)
	return err
}
