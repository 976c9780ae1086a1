package workflow

import (
	"context"
	"fmt"
	"log"
)

// Graph is the fixed directed workflow over the specialist roster:
// the coordinator entry node, one node per specialist, static edges,
// and conditional routing functions of the run state.
type Graph struct {
	registry *Registry
}

// NewGraph builds the workflow graph over the given registry. Every
// node must have a specialist registered under its id.
func NewGraph(registry *Registry) (*Graph, error) {
	nodes := []Node{
		NodeCoordinator, NodeCrawler, NodeResearcher, NodeContent,
		NodeComms, NodeHealthMonitor, NodeArchivist, NodeDesigner,
	}
	for _, n := range nodes {
		if !registry.Has(string(n)) {
			return nil, fmt.Errorf("no specialist registered for node %q", n)
		}
	}
	return &Graph{registry: registry}, nil
}

// next returns the node to visit after current. Routing is a pure
// function of the run state, so an invocation is deterministic.
func next(current Node, state *State) Node {
	switch current {
	case NodeCoordinator:
		return RouteFromEntry(state)
	case NodeResearcher:
		return RouteAfterResearch(state)
	case NodeContent, NodeCrawler:
		return NodeArchivist
	case NodeComms, NodeArchivist:
		return ShouldRunHealthCheck(state)
	case NodeHealthMonitor, NodeDesigner:
		return End
	default:
		return End
	}
}

// Invoke runs one pass of the graph: strictly sequential from the
// coordinator node to the terminal marker, exactly one Process call
// per visited node, no cycles and no re-entry. Specialist failures are
// carried in state.Err; Invoke returns an error only when a Process
// call itself cannot be made.
func (g *Graph) Invoke(ctx context.Context, state *State) error {
	// The linear routing above cannot revisit a node, but a wiring
	// mistake must fail loudly rather than loop.
	visited := make(map[Node]bool)

	for node := NodeCoordinator; node != End; node = next(node, state) {
		if visited[node] {
			return fmt.Errorf("workflow revisited node %q", node)
		}
		visited[node] = true

		sp, ok := g.registry.Lookup(string(node))
		if !ok {
			return fmt.Errorf("no specialist registered for node %q", node)
		}

		log.Printf("[workflow] visiting node %s", node)
		if err := sp.Process(ctx, state); err != nil {
			return fmt.Errorf("node %s: %w", node, err)
		}
	}
	return nil
}
