package specialist

import (
	"context"
	"fmt"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
	"github.com/crewgrid/crewgrid/pkg/models"
)

// CrawlFunc is the crawler's opaque capability: it returns trending
// findings for a goal.
type CrawlFunc func(ctx context.Context, goal string) ([]workflow.CrawlResult, error)

// Crawler scans for trending content and reports each finding to the
// archivist for knowledge-base archival.
type Crawler struct {
	base
	crawl CrawlFunc
}

// NewCrawler builds the crawler. A nil capability uses a deterministic
// built-in finding.
func NewCrawler(st store.Store, crawl CrawlFunc) *Crawler {
	if crawl == nil {
		crawl = func(_ context.Context, goal string) ([]workflow.CrawlResult, error) {
			return []workflow.CrawlResult{{
				Topic:   "Trending: " + goal,
				Summary: "Aggregated trend summary for: " + goal,
			}}, nil
		}
	}
	return &Crawler{
		base: base{
			id:    "crawler",
			name:  "Crawler",
			role:  "Web Crawler",
			room:  models.RoomDesks,
			store: st,
		},
		crawl: crawl,
	}
}

// Process implements workflow.Specialist.
func (c *Crawler) Process(ctx context.Context, state *workflow.State) error {
	return c.run(ctx, state, c.execute)
}

func (c *Crawler) execute(ctx context.Context, state *workflow.State) error {
	findings, err := c.crawl(ctx, state.Goal)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	for _, f := range findings {
		if _, err := c.store.CreateMessage(ctx, c.id, "archivist",
			"New finding: "+f.Topic+" - "+f.Summary, models.KindKnowledge); err != nil {
			return fmt.Errorf("share finding: %w", err)
		}
	}

	state.CrawlResults = findings
	return nil
}
