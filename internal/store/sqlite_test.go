package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/crewgrid/crewgrid/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "crewgrid.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestWorkerRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	w := models.Worker{ID: "researcher", Name: "Researcher", Role: "Deep Research"}
	if err := db.UpsertWorker(ctx, w); err != nil {
		t.Fatalf("UpsertWorker: %v", err)
	}

	got, err := db.GetWorker(ctx, "researcher")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if got.Status != models.StatusIdle {
		t.Errorf("new worker status = %q, want Idle", got.Status)
	}
	if got.Room != models.RoomDesks {
		t.Errorf("new worker room = %q, want Desks", got.Room)
	}

	err = db.UpdateWorker(ctx, "researcher", models.WorkerUpdate{
		Status:      models.StatusPtr(models.StatusWorking),
		CurrentTask: models.StringPtr("Research X"),
	})
	if err != nil {
		t.Fatalf("UpdateWorker: %v", err)
	}
	got, err = db.GetWorker(ctx, "researcher")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if got.Status != models.StatusWorking || got.CurrentTask != "Research X" {
		t.Errorf("got status=%q task=%q", got.Status, got.CurrentTask)
	}
	// Untouched fields survive a partial update.
	if got.Name != "Researcher" {
		t.Errorf("name clobbered: %q", got.Name)
	}
}

func TestGetWorkerNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetWorker(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertWorkerKeepsLiveState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.UpsertWorker(ctx, models.Worker{ID: "comms", Name: "Comms"}); err != nil {
		t.Fatalf("UpsertWorker: %v", err)
	}
	if err := db.UpdateWorker(ctx, "comms", models.WorkerUpdate{Status: models.StatusPtr(models.StatusWorking)}); err != nil {
		t.Fatalf("UpdateWorker: %v", err)
	}

	// Re-seeding must not reset live status.
	if err := db.UpsertWorker(ctx, models.Worker{ID: "comms", Name: "Comms", Role: "Communications"}); err != nil {
		t.Fatalf("UpsertWorker again: %v", err)
	}
	got, err := db.GetWorker(ctx, "comms")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if got.Status != models.StatusWorking {
		t.Errorf("status after re-seed = %q, want Working", got.Status)
	}
	if got.Role != "Communications" {
		t.Errorf("role not refreshed: %q", got.Role)
	}
}

func TestBulkUpdateWorkers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := db.UpsertWorker(ctx, models.Worker{ID: id, Name: id}); err != nil {
			t.Fatalf("UpsertWorker: %v", err)
		}
	}
	if err := db.BulkUpdateWorkers(ctx, models.StatusClockedOut, models.RoomLounge); err != nil {
		t.Fatalf("BulkUpdateWorkers: %v", err)
	}
	workers, err := db.ListWorkers(ctx)
	if err != nil {
		t.Fatalf("ListWorkers: %v", err)
	}
	if len(workers) != 3 {
		t.Fatalf("expected 3 workers, got %d", len(workers))
	}
	for _, w := range workers {
		if w.Status != models.StatusClockedOut || w.Room != models.RoomLounge {
			t.Errorf("worker %s: status=%q room=%q", w.ID, w.Status, w.Room)
		}
	}
}

func TestTaskRoundTripAndOrdering(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	low, err := db.CreateTask(ctx, models.Task{Title: "low", Priority: 1, Assignees: []string{"crawler"}})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	high, err := db.CreateTask(ctx, models.Task{Title: "high", Priority: 5, Assignees: []string{"crawler"}})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := db.CreateTask(ctx, models.Task{Title: "other", Assignees: []string{"comms"}}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	tasks, err := db.ListTasksForWorker(ctx, "crawler")
	if err != nil {
		t.Fatalf("ListTasksForWorker: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != high || tasks[1].ID != low {
		t.Errorf("ordering wrong: got %s, %s", tasks[0].Title, tasks[1].Title)
	}
	if tasks[0].Status != models.TaskStatusBacklog {
		t.Errorf("default status = %q, want Backlog", tasks[0].Status)
	}

	if err := db.UpdateTaskStatus(ctx, high, models.TaskStatusReview); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	got, err := db.GetTask(ctx, high)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Status != models.TaskStatusReview {
		t.Errorf("status = %q, want Review", got.Status)
	}
	if len(got.Assignees) != 1 || got.Assignees[0] != "crawler" {
		t.Errorf("assignees = %v", got.Assignees)
	}
}

func TestUpdateTaskStatusNotFound(t *testing.T) {
	db := openTestDB(t)
	err := db.UpdateTaskStatus(context.Background(), "nope", models.TaskStatusDone)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMessagesAppendOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateMessage(ctx, "coordinator", "crawler", "Task assigned: crawl", models.KindDelegation); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := db.CreateMessage(ctx, "crawler", "coordinator", "done", models.KindTaskComplete); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	msgs, err := db.ListRecentMessages(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestActivityLogRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.LogActivity(ctx, "system", "graph_complete", map[string]any{
		"goal":      "Research X",
		"delegated": []string{"researcher"},
	})
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}
	if err := db.LogActivity(ctx, "crawler", "task_completed", nil); err != nil {
		t.Fatalf("LogActivity nil details: %v", err)
	}

	entries, err := db.ListActivity(ctx, 10)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	var found bool
	for _, e := range entries {
		if e.Action == "graph_complete" {
			found = true
			if e.Details["goal"] != "Research X" {
				t.Errorf("details = %v", e.Details)
			}
		}
	}
	if !found {
		t.Error("graph_complete entry missing")
	}
}
