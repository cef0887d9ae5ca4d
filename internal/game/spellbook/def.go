// Package spellbook implements spell definitions, the per-character learned
// ledger, cooldown tracking, and cast damage computation. Casting never
// applies damage or healing to a target; it produces numbers for the combat
// resolver.
package spellbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatScaling adds statValue × Factor to a spell's base damage for one
// caster attribute.
type StatScaling struct {
	Stat   string  `yaml:"stat"`
	Factor float64 `yaml:"factor"`
}

// SpellDef defines one castable spell loaded from YAML.
type SpellDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Element tags the damage school for elemental modifiers.
	Element       string  `yaml:"element"`
	RequiredLevel int     `yaml:"required_level"`
	ManaCost      int     `yaml:"mana_cost"`
	BaseDamage    float64 `yaml:"base_damage"`
	// Cooldown is the post-cast lockout in seconds; 0 = none.
	Cooldown float64       `yaml:"cooldown"`
	Scaling  []StatScaling `yaml:"scaling,omitempty"`
}

// Validate checks that the SpellDef satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (d *SpellDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("spell: ID must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("spell %q: Name must not be empty", d.ID)
	}
	if d.ManaCost < 0 {
		return fmt.Errorf("spell %q: mana_cost must be >= 0, got %d", d.ID, d.ManaCost)
	}
	if d.RequiredLevel < 0 {
		return fmt.Errorf("spell %q: required_level must be >= 0, got %d", d.ID, d.RequiredLevel)
	}
	if d.Cooldown < 0 {
		return fmt.Errorf("spell %q: cooldown must be >= 0, got %g", d.ID, d.Cooldown)
	}
	for i, s := range d.Scaling {
		if s.Stat == "" {
			return fmt.Errorf("spell %q: scaling[%d] stat must not be empty", d.ID, i)
		}
	}
	return nil
}

// Registry holds all known SpellDefs keyed by ID. Immutable after loading.
type Registry struct {
	defs map[string]*SpellDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*SpellDef)}
}

// Register adds d to the registry.
//
// Precondition: d must not be nil and must have passed Validate.
// Postcondition: returns an error if d.ID is already registered.
func (r *Registry) Register(d *SpellDef) error {
	if _, exists := r.defs[d.ID]; exists {
		return fmt.Errorf("spellbook: Registry.Register: spell ID %q already registered", d.ID)
	}
	r.defs[d.ID] = d
	return nil
}

// Spell returns the SpellDef for id and whether it was found.
func (r *Registry) Spell(id string) (*SpellDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns all registered SpellDefs in unspecified order.
func (r *Registry) All() []*SpellDef {
	out := make([]*SpellDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadRegistry reads every *.yaml/*.yml file in dir, parses each as a list
// of SpellDefs, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("spellbook: reading directory %q: %w", dir, err)
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
			return nil, fmt.Errorf("spellbook: reading %q: %w", path, err)
		}
		var defs []*SpellDef
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("spellbook: parsing %q: %w", path, err)
		}
		for _, d := range defs {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("spellbook: invalid spell in %q: %w", path, err)
			}
			if err := reg.Register(d); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}
