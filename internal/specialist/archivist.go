package specialist

import (
	"context"
	"fmt"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// OrganizeFunc is the archivist's opaque capability: it files the
// run's accumulated knowledge and returns how many entries it
// organized.
type OrganizeFunc func(ctx context.Context, state *workflow.State) (int, error)

// Archivist organizes knowledge-base entries and reports the count to
// the coordinator.
type Archivist struct {
	base
	organize OrganizeFunc
}

// NewArchivist builds the archivist. A nil capability counts the run's
// findings, drafts, and crawl results as filed entries.
func NewArchivist(st store.Store, organize OrganizeFunc) *Archivist {
	if organize == nil {
		organize = func(_ context.Context, state *workflow.State) (int, error) {
			n := len(state.CrawlResults) + len(state.Drafts)
			if len(state.Findings) > 0 {
				n++
			}
			return n, nil
		}
	}
	return &Archivist{
		base: base{
			id:    "archivist",
			name:  "Archivist",
			role:  "Archivist",
			room:  models.RoomDesks,
			store: st,
		},
		organize: organize,
	}
}

// Process implements workflow.Specialist.
func (a *Archivist) Process(ctx context.Context, state *workflow.State) error {
	return a.run(ctx, state, a.execute)
}

func (a *Archivist) execute(ctx context.Context, state *workflow.State) error {
	organized, err := a.organize(ctx, state)
	if err != nil {
		return fmt.Errorf("organize knowledge: %w", err)
	}

	if _, err := a.store.CreateMessage(ctx, a.id, "coordinator",
		fmt.Sprintf("Knowledge base updated: %d new entries archived and categorized.", organized),
		models.KindKBUpdate); err != nil {
		return fmt.Errorf("report kb update: %w", err)
	}

	state.EntriesOrganized = organized
	return nil
}
