package specialist

import (
	"context"
	"fmt"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// TriageFunc is the comms specialist's opaque capability: it triages
// the inbound queue, returning the handled items and any escalations.
type TriageFunc func(ctx context.Context, goal string) (processed []string, escalations []string, err error)

// Comms processes inbound communications and escalates high-priority
// items to the coordinator.
type Comms struct {
	base
	triage TriageFunc
}

// NewComms builds the comms specialist. A nil capability uses a
// deterministic built-in triage.
func NewComms(st store.Store, triage TriageFunc) *Comms {
	if triage == nil {
		triage = func(_ context.Context, goal string) ([]string, []string, error) {
			return []string{"Handled: " + goal}, nil, nil
		}
	}
	return &Comms{
		base: base{
			id:    "comms",
			name:  "Comms",
			role:  "Communications",
			room:  models.RoomLounge,
			store: st,
		},
		triage: triage,
	}
}

// Process implements workflow.Specialist.
func (c *Comms) Process(ctx context.Context, state *workflow.State) error {
	return c.run(ctx, state, c.execute)
}

func (c *Comms) execute(ctx context.Context, state *workflow.State) error {
	processed, escalations, err := c.triage(ctx, state.Goal)
	if err != nil {
		return fmt.Errorf("triage communications: %w", err)
	}

	for _, esc := range escalations {
		if _, err := c.store.CreateMessage(ctx, c.id, "coordinator",
			"Escalation: "+esc, models.KindEscalation); err != nil {
			return fmt.Errorf("escalate item: %w", err)
		}
	}

	state.CommsProcessed = len(processed)
	return nil
}
