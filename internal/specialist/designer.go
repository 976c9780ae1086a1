package specialist

import (
	"context"
	"fmt"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// DesignFunc is the designer's opaque capability: it produces a design
// for a goal.
type DesignFunc func(ctx context.Context, goal string) (workflow.DesignOutput, error)

// Designer creates visual designs, shares them with the content
// specialist, and notifies the coordinator for review.
type Designer struct {
	base
	design DesignFunc
}

// NewDesigner builds the designer. A nil capability uses a
// deterministic built-in design.
func NewDesigner(st store.Store, design DesignFunc) *Designer {
	if design == nil {
		design = func(_ context.Context, goal string) (workflow.DesignOutput, error) {
			return workflow.DesignOutput{Description: "Design draft for: " + goal, Approval: "pending"}, nil
		}
	}
	return &Designer{
		base: base{
			id:    "designer",
			name:  "Designer",
			role:  "Designer",
			room:  models.RoomDesks,
			store: st,
		},
		design: design,
	}
}

// Process implements workflow.Specialist.
func (d *Designer) Process(ctx context.Context, state *workflow.State) error {
	return d.run(ctx, state, d.execute)
}

func (d *Designer) execute(ctx context.Context, state *workflow.State) error {
	out, err := d.design(ctx, state.Goal)
	if err != nil {
		return fmt.Errorf("design: %w", err)
	}

	if _, err := d.store.CreateMessage(ctx, d.id, "content",
		"Design ready: "+out.Description, models.KindDesignReady); err != nil {
		return fmt.Errorf("notify content specialist: %w", err)
	}
	if _, err := d.store.CreateMessage(ctx, d.id, "coordinator",
		"Design draft complete: "+out.Description+". Ready for review.", models.KindDesignComplete); err != nil {
		return fmt.Errorf("notify coordinator: %w", err)
	}

	state.Design = out
	return nil
}
