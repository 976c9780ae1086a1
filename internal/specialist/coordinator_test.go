package specialist

import (
	"context"
	"errors"
	"testing"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

func seedWorkers(t *testing.T, st *store.Memory, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := st.UpsertWorker(context.Background(), models.Worker{ID: id, Name: id}); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
}

func TestCoordinatorDelegation(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "coordinator", "researcher", "archivist")
	ctx := context.Background()

	planner := PlannerFunc(func(_ context.Context, goal string) (Plan, error) {
		return Plan{Subtasks: []Subtask{
			{Worker: "researcher", Title: "Research X", Priority: 3},
			{Worker: "archivist", Title: "File the results", Priority: 1},
		}}, nil
	})

	c := NewCoordinator(st, planner)
	state := workflow.NewState("Research X and archive it")
	if err := c.Process(ctx, state); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if state.Failed() {
		t.Fatalf("unexpected run error: %s", state.Err)
	}

	if len(state.Delegated) != 2 || state.Delegated[0] != "researcher" {
		t.Fatalf("Delegated = %v", state.Delegated)
	}
	if len(state.DelegatedTaskIDs) != 2 {
		t.Fatalf("DelegatedTaskIDs = %v", state.DelegatedTaskIDs)
	}

	// First subtask starts in execution, the rest wait in the backlog.
	first, err := st.GetTask(ctx, state.DelegatedTaskIDs[0])
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if first.Status != models.TaskStatusInProgress {
		t.Errorf("first task status = %q, want In Progress", first.Status)
	}
	second, err := st.GetTask(ctx, state.DelegatedTaskIDs[1])
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if second.Status != models.TaskStatusBacklog {
		t.Errorf("second task status = %q, want Backlog", second.Status)
	}

	// Only the first delegate is flipped to Working.
	researcher, err := st.GetWorker(ctx, "researcher")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if researcher.Status != models.StatusWorking || researcher.CurrentTask != "Research X" {
		t.Errorf("researcher = %q / %q", researcher.Status, researcher.CurrentTask)
	}
	archivist, err := st.GetWorker(ctx, "archivist")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if archivist.Status != models.StatusIdle {
		t.Errorf("archivist status = %q, want Idle", archivist.Status)
	}

	// One delegation message per subtask.
	var delegations int
	for _, m := range st.Messages() {
		if m.Kind == models.KindDelegation {
			delegations++
		}
	}
	if delegations != 2 {
		t.Errorf("delegation messages = %d, want 2", delegations)
	}
}

func TestCoordinatorDirectReply(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "coordinator")
	ctx := context.Background()

	planner := PlannerFunc(func(_ context.Context, _ string) (Plan, error) {
		return Plan{Response: "All quiet."}, nil
	})

	c := NewCoordinator(st, planner)
	state := workflow.NewState("anything new?")
	if err := c.Process(ctx, state); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(state.Delegated) != 0 {
		t.Errorf("Delegated = %v, want none", state.Delegated)
	}
	msgs := st.Messages()
	var chat *models.Message
	for i := range msgs {
		if msgs[i].Kind == models.KindChat && msgs[i].To == "user" {
			chat = &msgs[i]
		}
	}
	if chat == nil || chat.Content != "All quiet." {
		t.Fatalf("expected chat reply to user, got %v", msgs)
	}
}

func TestCoordinatorConvenesMeeting(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "coordinator", "researcher", "content")
	ctx := context.Background()

	planner := PlannerFunc(func(_ context.Context, _ string) (Plan, error) {
		return Plan{MeetingWorkers: []string{"researcher", "content"}}, nil
	})

	c := NewCoordinator(st, planner)
	state := workflow.NewState("Quarterly planning meeting")
	if err := c.Process(ctx, state); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// Participants move to the War Room and stay in Meeting.
	for _, id := range []string{"researcher", "content"} {
		w, err := st.GetWorker(ctx, id)
		if err != nil {
			t.Fatalf("GetWorker(%s): %v", id, err)
		}
		if w.Status != models.StatusMeeting || w.Room != models.RoomWarRoom {
			t.Errorf("%s = %q/%q, want Meeting/War Room", id, w.Status, w.Room)
		}
	}

	// The coordinator joins transiently; its lifecycle settles it Idle.
	coord, err := st.GetWorker(ctx, "coordinator")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if coord.Status != models.StatusIdle {
		t.Errorf("coordinator status = %q, want Idle after lifecycle", coord.Status)
	}
	if coord.Room != models.RoomWarRoom {
		t.Errorf("coordinator room = %q, want War Room", coord.Room)
	}

	var meeting *models.Message
	msgs := st.Messages()
	for i := range msgs {
		if msgs[i].Kind == models.KindMeeting {
			meeting = &msgs[i]
		}
	}
	if meeting == nil {
		t.Fatal("expected a meeting message")
	}
	if meeting.To != "system" {
		t.Errorf("meeting message to %q, want system", meeting.To)
	}
	want := "Meeting scheduled: Quarterly planning meeting with researcher, content"
	if meeting.Content != want {
		t.Errorf("meeting content = %q, want %q", meeting.Content, want)
	}
}

func TestCoordinatorPlannerFailureSetsRunError(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "coordinator")

	planner := PlannerFunc(func(_ context.Context, _ string) (Plan, error) {
		return Plan{}, errors.New("planner offline")
	})

	c := NewCoordinator(st, planner)
	state := workflow.NewState("goal")
	if err := c.Process(context.Background(), state); err != nil {
		t.Fatalf("Process should carry failure in state, got %v", err)
	}
	if !state.Failed() {
		t.Fatal("expected run error")
	}

	w, err := st.GetWorker(context.Background(), "coordinator")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if w.Status != models.StatusError {
		t.Errorf("coordinator status = %q, want Error", w.Status)
	}
}

func TestRulePlannerRoutes(t *testing.T) {
	tests := []struct {
		goal   string
		worker string
	}{
		{"Check system health", "healthmonitor"},
		{"Research the Go scheduler", "researcher"},
		{"Crawl for trending topics", "crawler"},
		{"Design a landing page mockup", "designer"},
		{"Triage the inbox", "comms"},
		{"Organize the knowledge base", "archivist"},
		{"Write a launch post", "content"},
	}
	for _, tt := range tests {
		plan, err := RulePlanner{}.Plan(context.Background(), tt.goal)
		if err != nil {
			t.Fatalf("Plan(%q): %v", tt.goal, err)
		}
		if len(plan.Subtasks) != 1 || plan.Subtasks[0].Worker != tt.worker {
			t.Errorf("Plan(%q) = %+v, want delegate to %s", tt.goal, plan, tt.worker)
		}
	}
}

func TestRulePlannerMeeting(t *testing.T) {
	plan, err := RulePlanner{}.Plan(context.Background(), "Schedule a planning meeting")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Subtasks) != 0 {
		t.Errorf("unexpected delegation: %+v", plan.Subtasks)
	}
	if len(plan.MeetingWorkers) == 0 {
		t.Error("expected meeting workers")
	}
	if plan.Response == "" {
		t.Error("expected a user-facing reply")
	}
}

func TestRulePlannerDirectReply(t *testing.T) {
	plan, err := RulePlanner{}.Plan(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Subtasks) != 0 || plan.Response == "" {
		t.Errorf("expected direct reply, got %+v", plan)
	}
}
