package specialist

import (
	"context"
	"fmt"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// DraftFunc is the content specialist's opaque capability: it turns a
// goal (and any research findings) into content drafts.
type DraftFunc func(ctx context.Context, goal string, findings map[string]string) ([]workflow.Draft, error)

// Content turns research into content drafts and notifies the
// coordinator when drafts are ready for review.
type Content struct {
	base
	draft DraftFunc
}

// NewContent builds the content specialist. A nil capability uses a
// deterministic built-in draft.
func NewContent(st store.Store, draft DraftFunc) *Content {
	if draft == nil {
		draft = func(_ context.Context, goal string, findings map[string]string) ([]workflow.Draft, error) {
			topic := findings["title"]
			if topic == "" {
				topic = goal
			}
			return []workflow.Draft{{Platform: "blog", Topic: topic, Body: "Draft based on: " + topic}}, nil
		}
	}
	return &Content{
		base: base{
			id:    "content",
			name:  "Content",
			role:  "Content Engineer",
			room:  models.RoomDesks,
			store: st,
		},
		draft: draft,
	}
}

// Process implements workflow.Specialist.
func (c *Content) Process(ctx context.Context, state *workflow.State) error {
	return c.run(ctx, state, c.execute)
}

func (c *Content) execute(ctx context.Context, state *workflow.State) error {
	drafts, err := c.draft(ctx, state.Goal, state.Findings)
	if err != nil {
		return fmt.Errorf("draft content: %w", err)
	}

	topic := state.Goal
	if len(drafts) > 0 {
		topic = drafts[0].Topic
	}
	if _, err := c.store.CreateMessage(ctx, c.id, "coordinator",
		fmt.Sprintf("Content ready: %d draft(s) for review on topic '%s'", len(drafts), topic),
		models.KindContentReady); err != nil {
		return fmt.Errorf("notify coordinator: %w", err)
	}

	state.Drafts = drafts
	return nil
}
