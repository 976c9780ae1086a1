package workflow

import (
	"context"
	"fmt"
	"sort"
)

// Specialist is the port every worker capability implements. Process
// mutates the shared run state and reports failures through State.Err;
// a returned error means the call itself could not be made.
type Specialist interface {
	// ID returns the stable worker id this specialist serves.
	ID() string
	// Process runs the specialist against the shared run state.
	Process(ctx context.Context, state *State) error
}

// Registry maps worker ids to their Specialist instances.
// It is read-only after construction.
type Registry struct {
	specialists map[string]Specialist
}

// NewRegistry builds a registry from the given specialists.
// Duplicate ids are an error.
func NewRegistry(specialists ...Specialist) (*Registry, error) {
	m := make(map[string]Specialist, len(specialists))
	for _, s := range specialists {
		if _, dup := m[s.ID()]; dup {
			return nil, fmt.Errorf("duplicate specialist id %q", s.ID())
		}
		m[s.ID()] = s
	}
	return &Registry{specialists: m}, nil
}

// Lookup returns the specialist for id, or false if none is registered.
func (r *Registry) Lookup(id string) (Specialist, bool) {
	s, ok := r.specialists[id]
	return s, ok
}

// Has returns true if a specialist is registered under id.
func (r *Registry) Has(id string) bool {
	_, ok := r.specialists[id]
	return ok
}

// IDs returns all registered worker ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.specialists))
	for id := range r.specialists {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
