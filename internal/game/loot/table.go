// Package loot implements static drop tables and stateless probability rolls
// against them.
package loot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GoldDrop defines the range of gold a table can drop.
type GoldDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Entry defines a single item entry in a loot table with a drop chance.
// Guaranteed entries skip the chance roll on boss kills.
type Entry struct {
	ItemID     string  `yaml:"item"`
	Chance     float64 `yaml:"chance"`
	MinQty     int     `yaml:"min_qty"`
	MaxQty     int     `yaml:"max_qty"`
	Guaranteed bool    `yaml:"guaranteed,omitempty"`
}

// Table defines the possible drops for one enemy or chest.
type Table struct {
	ID      string    `yaml:"id"`
	Gold    *GoldDrop `yaml:"gold"`
	Entries []Entry   `yaml:"entries"`
}

// Validate checks that the table satisfies its invariants.
//
// Precondition: t must not be nil.
// Postcondition: returns nil iff all gold and entry constraints hold; an
// empty table (no gold, no entries) is valid.
func (t *Table) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("loot table: ID must not be empty")
	}
	if t.Gold != nil {
		if t.Gold.Min < 0 {
			return fmt.Errorf("loot table %q: gold min must be >= 0, got %d", t.ID, t.Gold.Min)
		}
		if t.Gold.Min > t.Gold.Max {
			return fmt.Errorf("loot table %q: gold min (%d) must be <= max (%d)", t.ID, t.Gold.Min, t.Gold.Max)
		}
	}
	for i, e := range t.Entries {
		if e.ItemID == "" {
			return fmt.Errorf("loot table %q: entry[%d] must have a non-empty item id", t.ID, i)
		}
		if e.Chance < 0 || e.Chance > 1.0 {
			return fmt.Errorf("loot table %q: entry[%d] chance must be in [0, 1.0], got %f", t.ID, i, e.Chance)
		}
		if e.MinQty < 1 {
			return fmt.Errorf("loot table %q: entry[%d] min_qty must be >= 1, got %d", t.ID, i, e.MinQty)
		}
		if e.MinQty > e.MaxQty {
			return fmt.Errorf("loot table %q: entry[%d] min_qty (%d) must be <= max_qty (%d)", t.ID, i, e.MinQty, e.MaxQty)
		}
	}
	return nil
}

// Registry holds all known loot tables keyed by ID. Immutable after loading.
type Registry struct {
	tables map[string]*Table
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Register adds t to the registry.
//
// Precondition: t must have passed Validate.
func (r *Registry) Register(t *Table) error {
	if _, exists := r.tables[t.ID]; exists {
		return fmt.Errorf("loot: Registry.Register: table ID %q already registered", t.ID)
	}
	r.tables[t.ID] = t
	return nil
}

// Table returns the table for id and whether it was found.
func (r *Registry) Table(id string) (*Table, bool) {
	t, ok := r.tables[id]
	return t, ok
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return len(r.tables)
}

// All returns all registered tables in unspecified order.
func (r *Registry) All() []*Table {
	out := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	return out
}

// LoadRegistry reads every *.yaml/*.yml file in dir, parses each as a list
// of Tables, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loot: reading directory %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loot: reading %q: %w", path, err)
		}
		var tables []*Table
		if err := yaml.Unmarshal(data, &tables); err != nil {
			return nil, fmt.Errorf("loot: parsing %q: %w", path, err)
		}
		for _, t := range tables {
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("loot: invalid table in %q: %w", path, err)
			}
			if err := reg.Register(t); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}
