// Package engine ties the workflow graph, the dispatcher, and the goal
// queue together: one Runner executes a goal end to end, one
// QueueWorker feeds the Runner from the durable queue, and Service is
// the control surface callers submit goals through.
package engine

import (
	"context"
	"log"

	"github.com/crewgrid/crewgrid/internal/dispatch"
	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
)

// Runner executes a single goal: one graph invocation, then
// reconciliation of the primary task and a backlog sweep.
type Runner struct {
	graph      *workflow.Graph
	dispatcher *dispatch.Dispatcher
	store      store.Store
}

// NewRunner creates a Runner over the given graph, dispatcher and store.
func NewRunner(graph *workflow.Graph, dispatcher *dispatch.Dispatcher, st store.Store) *Runner {
	return &Runner{graph: graph, dispatcher: dispatcher, store: st}
}

// Run executes one goal through the workflow graph and reconciles the
// results. Specialist failures are carried in the run state and
// finalized as blocked tasks; only structural failures are returned.
func (r *Runner) Run(ctx context.Context, goal string) error {
	log.Printf("[engine] running goal: %s", truncate(goal, 120))

	state := workflow.NewState(goal)
	if err := r.graph.Invoke(ctx, state); err != nil {
		log.Printf("[engine] graph invocation failed: %v", err)
		if lerr := r.store.LogActivity(ctx, "system", "graph_error", map[string]any{
			"goal":  goal,
			"error": err.Error(),
		}); lerr != nil {
			log.Printf("[engine] failed to log graph error: %v", lerr)
		}
		return err
	}

	if err := r.dispatcher.FinalizePrimaryTask(ctx, state); err != nil {
		return err
	}

	// Delegation beyond the primary task lands in worker backlogs;
	// sweep now instead of waiting for the next periodic tick.
	if err := r.dispatcher.DispatchIdleWorkers(ctx); err != nil {
		log.Printf("[engine] post-run sweep failed: %v", err)
	}

	return r.store.LogActivity(ctx, "system", "graph_complete", map[string]any{
		"goal":      goal,
		"delegated": state.Delegated,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
