package specialist

import (
	"context"
	"fmt"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// ResearchFunc is the researcher's opaque capability: it produces
// report fields for a goal.
type ResearchFunc func(ctx context.Context, goal string) (map[string]string, error)

// Researcher performs deep research and shares the findings with the
// content specialist and the archivist.
type Researcher struct {
	base
	research ResearchFunc
}

// NewResearcher builds the researcher. A nil capability uses a
// deterministic built-in report.
func NewResearcher(st store.Store, research ResearchFunc) *Researcher {
	if research == nil {
		research = func(_ context.Context, goal string) (map[string]string, error) {
			return map[string]string{
				"title":   "Research brief: " + goal,
				"summary": "Key findings compiled for: " + goal,
			}, nil
		}
	}
	return &Researcher{
		base: base{
			id:    "researcher",
			name:  "Researcher",
			role:  "Deep Research",
			room:  models.RoomDesks,
			store: st,
		},
		research: research,
	}
}

// Process implements workflow.Specialist.
func (r *Researcher) Process(ctx context.Context, state *workflow.State) error {
	return r.run(ctx, state, r.execute)
}

func (r *Researcher) execute(ctx context.Context, state *workflow.State) error {
	findings, err := r.research(ctx, state.Goal)
	if err != nil {
		return fmt.Errorf("research: %w", err)
	}

	title := findings["title"]
	if _, err := r.store.CreateMessage(ctx, r.id, "content",
		"Research complete: "+title+". Key findings available for content creation.",
		models.KindContentReady); err != nil {
		return fmt.Errorf("notify content specialist: %w", err)
	}
	if _, err := r.store.CreateMessage(ctx, r.id, "archivist",
		"New research report: "+title, models.KindKnowledge); err != nil {
		return fmt.Errorf("notify archivist: %w", err)
	}

	state.Findings = findings
	return nil
}
