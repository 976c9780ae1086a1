package specialist

import (
	"context"
	"testing"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

func TestHealthMonitorRecoversErroredWorkers(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "healthmonitor", "crawler", "comms")
	ctx := context.Background()

	if err := st.UpdateWorker(ctx, "crawler", models.WorkerUpdate{Status: models.StatusPtr(models.StatusError)}); err != nil {
		t.Fatalf("UpdateWorker: %v", err)
	}

	h := NewHealthMonitor(st)
	state := workflow.NewState("Check system health")
	state.Err = "crawler crashed"
	if err := h.Process(ctx, state); err != nil {
		t.Fatalf("Process: %v", err)
	}

	crawler, err := st.GetWorker(ctx, "crawler")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if crawler.Status != models.StatusIdle {
		t.Errorf("crawler status = %q, want Idle", crawler.Status)
	}

	if state.Health.Recovered != 1 || state.Health.SystemStatus != "recovering" {
		t.Errorf("health report = %+v", state.Health)
	}
	if state.Err != "" {
		t.Errorf("run error should be cleared, got %q", state.Err)
	}

	var recovery, report bool
	for _, m := range st.Messages() {
		switch m.Kind {
		case models.KindRecovery:
			recovery = m.To == "crawler"
		case models.KindStatusReport:
			report = m.To == "coordinator"
		}
	}
	if !recovery || !report {
		t.Errorf("recovery=%v report=%v, want both", recovery, report)
	}
}

func TestHealthMonitorNothingToRecover(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "healthmonitor", "crawler")
	ctx := context.Background()

	h := NewHealthMonitor(st)
	state := workflow.NewState("Check system health")
	if err := h.Process(ctx, state); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if state.Health.Empty() {
		t.Fatal("expected a health report")
	}
	if state.Health.Recovered != 0 || state.Health.SystemStatus != "operational" {
		t.Errorf("health report = %+v", state.Health)
	}
	// Lifecycle settles the monitor itself back to Idle.
	w, err := st.GetWorker(ctx, "healthmonitor")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if w.Status != models.StatusIdle {
		t.Errorf("healthmonitor status = %q, want Idle", w.Status)
	}
	if w.Room != models.RoomServerRoom {
		t.Errorf("healthmonitor room = %q, want Server Room", w.Room)
	}
}

func TestSpecialistLifecycleOnFailure(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "researcher")
	ctx := context.Background()

	r := NewResearcher(st, func(_ context.Context, _ string) (map[string]string, error) {
		return nil, context.DeadlineExceeded
	})
	state := workflow.NewState("Research X")
	if err := r.Process(ctx, state); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !state.Failed() {
		t.Fatal("expected run error")
	}

	w, err := st.GetWorker(ctx, "researcher")
	if err != nil {
		t.Fatalf("GetWorker: %v", err)
	}
	if w.Status != models.StatusError {
		t.Errorf("status = %q, want Error", w.Status)
	}

	entries := st.ActivityEntries()
	var logged bool
	for _, e := range entries {
		if e.Action == "researcher_error" {
			logged = true
		}
	}
	if !logged {
		t.Error("expected researcher_error activity entry")
	}
}

func TestResearcherSharesFindings(t *testing.T) {
	st := store.NewMemory()
	seedWorkers(t, st, "researcher")
	ctx := context.Background()

	r := NewResearcher(st, nil)
	state := workflow.NewState("Research X")
	if err := r.Process(ctx, state); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(state.Findings) == 0 {
		t.Fatal("expected findings")
	}

	var toContent, toArchivist bool
	for _, m := range st.Messages() {
		if m.To == "content" && m.Kind == models.KindContentReady {
			toContent = true
		}
		if m.To == "archivist" && m.Kind == models.KindKnowledge {
			toArchivist = true
		}
	}
	if !toContent || !toArchivist {
		t.Errorf("content=%v archivist=%v, want both notified", toContent, toArchivist)
	}
}

func TestDefaultRegistryCoversGraphNodes(t *testing.T) {
	st := store.NewMemory()
	registry, err := DefaultRegistry(st, nil)
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	if _, err := workflow.NewGraph(registry); err != nil {
		t.Fatalf("NewGraph over default registry: %v", err)
	}
}
