package specialist

import (
	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
)

// DefaultRegistry builds the production registry: the full specialist
// roster over the given store, with the built-in capabilities.
// The registry's lifetime is owned by process bootstrap.
func DefaultRegistry(st store.Store, planner Planner) (*workflow.Registry, error) {
	return workflow.NewRegistry(
		NewCoordinator(st, planner),
		NewResearcher(st, nil),
		NewCrawler(st, nil),
		NewContent(st, nil),
		NewComms(st, nil),
		NewHealthMonitor(st),
		NewArchivist(st, nil),
		NewDesigner(st, nil),
	)
}
