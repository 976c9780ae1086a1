// Package roster defines the worker roster: which specialists exist,
// their display names, roles and home rooms. The roster is loaded from
// YAML and seeded into the store at startup; live status and task
// fields of already-known workers are preserved.
package roster

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/pkg/models"
)

//go:embed default.yaml
var defaultRoster []byte

// Entry is one roster row.
type Entry struct {
	ID   string      `yaml:"id"`
	Name string      `yaml:"name"`
	Role string      `yaml:"role"`
	Room models.Room `yaml:"room"`
}

// Roster is the full worker roster.
type Roster struct {
	Workers []Entry `yaml:"workers"`
}

// Default returns the built-in roster.
func Default() (*Roster, error) {
	return Parse(defaultRoster)
}

// Load reads and validates a roster file.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates roster YAML.
func Parse(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(r.Workers) == 0 {
		return nil, fmt.Errorf("roster has no workers")
	}

	seen := make(map[string]bool, len(r.Workers))
	for i := range r.Workers {
		w := &r.Workers[i]
		if w.ID == "" {
			return nil, fmt.Errorf("roster entry %d has no id", i)
		}
		if seen[w.ID] {
			return nil, fmt.Errorf("duplicate roster id %q", w.ID)
		}
		seen[w.ID] = true
		if w.Name == "" {
			w.Name = w.ID
		}
		if w.Room == "" {
			w.Room = models.RoomDesks
		}
		if !w.Room.Valid() {
			return nil, fmt.Errorf("roster entry %q has unknown room %q", w.ID, w.Room)
		}
	}
	return &r, nil
}

// IDs returns the roster's worker ids in file order.
func (r *Roster) IDs() []string {
	ids := make([]string, len(r.Workers))
	for i, w := range r.Workers {
		ids[i] = w.ID
	}
	return ids
}

// Seed upserts every roster worker into the store. Workers already
// present keep their live status, room, task and note.
func (r *Roster) Seed(ctx context.Context, st store.Store) error {
	for _, w := range r.Workers {
		if err := st.UpsertWorker(ctx, models.Worker{
			ID:     w.ID,
			Name:   w.Name,
			Role:   w.Role,
			Room:   w.Room,
			Status: models.StatusIdle,
		}); err != nil {
			return fmt.Errorf("seed worker %s: %w", w.ID, err)
		}
	}
	return nil
}
