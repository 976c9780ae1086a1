package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crewgrid/crewgrid/internal/dispatch"
	"github.com/crewgrid/crewgrid/internal/queue"
	"github.com/crewgrid/crewgrid/internal/specialist"
	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

var rosterIDs = []string{
	"coordinator", "researcher", "crawler", "content",
	"comms", "healthmonitor", "archivist", "designer",
}

// newRunner wires a Runner over the real specialist roster and an
// in-memory store, with every worker seeded idle.
func newRunner(t *testing.T) (*Runner, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for _, id := range rosterIDs {
		if err := st.UpsertWorker(ctx, models.Worker{ID: id, Name: id, Status: models.StatusIdle}); err != nil {
			t.Fatalf("UpsertWorker(%s): %v", id, err)
		}
	}
	registry, err := specialist.DefaultRegistry(st, nil)
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	graph, err := workflow.NewGraph(registry)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return NewRunner(graph, dispatch.New(st, registry), st), st
}

func hasActivity(st *store.Memory, action string) bool {
	for _, e := range st.ActivityEntries() {
		if e.Action == action {
			return true
		}
	}
	return false
}

func TestRunnerHealthGoalRecoversWorkers(t *testing.T) {
	r, st := newRunner(t)
	ctx := context.Background()

	if err := st.UpdateWorker(ctx, "crawler", models.WorkerUpdate{Status: models.StatusPtr(models.StatusError)}); err != nil {
		t.Fatalf("UpdateWorker: %v", err)
	}

	if err := r.Run(ctx, "Run a health check on the system"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	crawler, err := st.GetWorker(ctx, "crawler")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if crawler.Status != models.StatusIdle {
		t.Errorf("crawler status = %q, want Idle after recovery", crawler.Status)
	}

	// The delegated health-check task was executed inline by the graph
	// and finalized afterwards.
	tasks, err := st.ListTasksForWorker(ctx, "healthmonitor")
	if err != nil {
		t.Fatalf("ListTasksForWorker: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("healthmonitor tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Status != models.TaskStatusDone {
		t.Errorf("health task status = %q, want Done", tasks[0].Status)
	}

	if !hasActivity(st, "graph_complete") {
		t.Error("expected graph_complete activity entry")
	}

	var paraphrased bool
	for _, m := range st.Messages() {
		if m.To == "user" && strings.Contains(m.Content, "Health Monitor completed") {
			paraphrased = true
		}
	}
	if !paraphrased {
		t.Error("expected a Health Monitor completion paraphrase to the user")
	}
}

func TestRunnerDirectReplySkipsDelegation(t *testing.T) {
	r, st := newRunner(t)
	ctx := context.Background()

	if err := r.Run(ctx, "hello there"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var reply bool
	for _, m := range st.Messages() {
		if m.To == "user" && m.Content == "No delegation needed for: hello there" {
			reply = true
		}
		if m.Kind == models.KindDelegation {
			t.Errorf("unexpected delegation message: %q", m.Content)
		}
	}
	if !reply {
		t.Error("expected the coordinator's direct reply to the user")
	}
	if !hasActivity(st, "graph_complete") {
		t.Error("expected graph_complete activity entry")
	}
}

// stubSpecialist is a minimal workflow.Specialist for structural tests.
type stubSpecialist struct {
	id  string
	err error
}

func (s stubSpecialist) ID() string { return s.id }

func (s stubSpecialist) Process(context.Context, *workflow.State) error { return s.err }

func newStubRunner(t *testing.T, coordinatorErr error) (*Runner, *store.Memory) {
	t.Helper()
	specialists := make([]workflow.Specialist, 0, len(rosterIDs))
	for _, id := range rosterIDs {
		var err error
		if id == "coordinator" {
			err = coordinatorErr
		}
		specialists = append(specialists, stubSpecialist{id: id, err: err})
	}
	registry, err := workflow.NewRegistry(specialists...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	graph, err := workflow.NewGraph(registry)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	st := store.NewMemory()
	return NewRunner(graph, dispatch.New(st, registry), st), st
}

func TestRunnerLogsGraphError(t *testing.T) {
	boom := errors.New("node wiring broken")
	r, st := newStubRunner(t, boom)

	if err := r.Run(context.Background(), "any goal"); !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
	if !hasActivity(st, "graph_error") {
		t.Error("expected graph_error activity entry")
	}
	if hasActivity(st, "graph_complete") {
		t.Error("graph_complete logged for a failed invocation")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestQueueWorkerConsumesAndAcks(t *testing.T) {
	r, st := newRunner(t)
	q := queue.NewMemory()
	id, err := q.Enqueue(context.Background(), "hello there", 0, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		NewQueueWorker(q, r, st, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return q.AckCount(id) == 1 })
	cancel()
	<-done

	if !hasActivity(st, "graph_complete") {
		t.Error("expected graph_complete activity entry")
	}
}

func TestQueueWorkerAcksFailedGoal(t *testing.T) {
	boom := errors.New("node wiring broken")
	r, st := newStubRunner(t, boom)
	q := queue.NewMemory()
	id, err := q.Enqueue(context.Background(), "doomed goal", 0, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		NewQueueWorker(q, r, st, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	// Ack happens even though the run failed; the goal is not retried.
	waitFor(t, func() bool { return q.AckCount(id) == 1 })
	cancel()
	<-done

	if !hasActivity(st, "task_queue_error") {
		t.Error("expected task_queue_error activity entry")
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0", q.Len())
	}
}

func TestServiceSubmitGoalEnqueues(t *testing.T) {
	r, st := newRunner(t)
	q := queue.NewMemory()
	svc := NewService(q, r, st)

	id, queued, err := svc.SubmitGoal(context.Background(), "crawl for trends", 2, []string{"crawler"})
	if err != nil {
		t.Fatalf("SubmitGoal: %v", err)
	}
	if id == "" {
		t.Error("SubmitGoal returned empty id")
	}
	if !queued {
		t.Error("SubmitGoal reported an inline run with a working queue")
	}
	if q.Len() != 1 {
		t.Errorf("queue length = %d, want 1", q.Len())
	}

	if _, _, err := svc.SubmitGoal(context.Background(), "", 0, nil); err == nil {
		t.Error("expected error for empty goal")
	}
}

func TestServiceSubmitGoalInlineWithoutQueue(t *testing.T) {
	r, st := newRunner(t)
	svc := NewService(nil, r, st)

	_, queued, err := svc.SubmitGoal(context.Background(), "hello there", 0, nil)
	if err != nil {
		t.Fatalf("SubmitGoal: %v", err)
	}
	if queued {
		t.Error("SubmitGoal reported queued with no queue configured")
	}
	waitFor(t, func() bool { return hasActivity(st, "graph_complete") })
}

func TestServiceSubmitGoalFallsBackOnEnqueueError(t *testing.T) {
	r, st := newRunner(t)
	q := queue.NewMemory()
	q.FailWith(errors.New("redis down"))
	svc := NewService(q, r, st)

	_, queued, err := svc.SubmitGoal(context.Background(), "hello there", 0, nil)
	if err != nil {
		t.Fatalf("SubmitGoal: %v", err)
	}
	if queued {
		t.Error("SubmitGoal reported queued despite enqueue failure")
	}
	waitFor(t, func() bool { return hasActivity(st, "graph_complete") })
}

func TestServiceOverrideWorkers(t *testing.T) {
	r, st := newRunner(t)
	svc := NewService(queue.NewMemory(), r, st)
	ctx := context.Background()

	if err := svc.OverrideWorkers(ctx, models.StatusClockedOut, models.RoomLounge, "end of shift"); err != nil {
		t.Fatalf("OverrideWorkers: %v", err)
	}

	workers, err := st.ListWorkers(ctx)
	if err != nil {
		t.Fatalf("ListWorkers: %v", err)
	}
	for _, w := range workers {
		if w.Status != models.StatusClockedOut || w.Room != models.RoomLounge {
			t.Errorf("worker %s = %q/%q, want Clocked Out/Lounge", w.ID, w.Status, w.Room)
		}
	}
	var override bool
	for _, e := range st.ActivityEntries() {
		if e.Action == "state_override" && e.Details["note"] == "end of shift" {
			override = true
		}
	}
	if !override {
		t.Error("expected state_override activity entry with the note")
	}

	if err := svc.OverrideWorkers(ctx, "Napping", models.RoomLounge, ""); err == nil {
		t.Error("expected error for invalid status")
	}
	if err := svc.OverrideWorkers(ctx, models.StatusIdle, "Roof", ""); err == nil {
		t.Error("expected error for invalid room")
	}
}
