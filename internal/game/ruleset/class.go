// Package ruleset defines the static game rules loaded at startup: playable
// classes and the balance document that tunes the progression engine.
package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Class defines a playable character class.
//
// Precondition: ID, Name, and SkillBranch must be non-empty after loading.
type Class struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// BaseStats maps primary stat names (strength, intellect, wisdom,
	// dexterity, constitution, charisma) to the class's starting values.
	BaseStats  map[string]int `yaml:"base_stats"`
	HPPerLevel int            `yaml:"hp_per_level"`
	MPPerLevel int            `yaml:"mp_per_level"`
	// AllowedWeaponTypes lists the weapon subtypes members of this class may
	// equip (e.g. "sword", "staff"). Empty means no weapons.
	AllowedWeaponTypes []string `yaml:"allowed_weapon_types"`
	// AllowedArmorTypes lists the armor categories this class may wear.
	AllowedArmorTypes []string `yaml:"allowed_armor_types"`
	// Melee marks the class as front-row by default for auto-formation.
	Melee bool `yaml:"melee"`
	// SkillBranch is the skill-tree branch ID this class invests into.
	SkillBranch string `yaml:"skill_branch"`
}

// Validate checks that the Class satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (c *Class) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("class: ID must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("class %q: Name must not be empty", c.ID)
	}
	if c.HPPerLevel < 1 {
		return fmt.Errorf("class %q: hp_per_level must be >= 1, got %d", c.ID, c.HPPerLevel)
	}
	if c.MPPerLevel < 0 {
		return fmt.Errorf("class %q: mp_per_level must be >= 0, got %d", c.ID, c.MPPerLevel)
	}
	for name, value := range c.BaseStats {
		if !validStatNames[name] {
			return fmt.Errorf("class %q: unknown base stat %q", c.ID, name)
		}
		if value < 0 {
			return fmt.Errorf("class %q: base stat %q must be >= 0, got %d", c.ID, name, value)
		}
	}
	return nil
}

// validStatNames is the set of primary stat keys accepted in base_stats.
var validStatNames = map[string]bool{
	"strength":     true,
	"intellect":    true,
	"wisdom":       true,
	"dexterity":    true,
	"constitution": true,
	"charisma":     true,
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed, validated classes or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var c Class
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing class file %s: %w", path, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid class in %s: %w", path, err)
		}
		classes = append(classes, &c)
	}
	return classes, nil
}

// ClassIndex builds a lookup map from a class slice keyed by ID.
//
// Postcondition: Returns an error if two classes share an ID.
func ClassIndex(classes []*Class) (map[string]*Class, error) {
	idx := make(map[string]*Class, len(classes))
	for _, c := range classes {
		if _, exists := idx[c.ID]; exists {
			return nil, fmt.Errorf("duplicate class ID %q", c.ID)
		}
		idx[c.ID] = c
	}
	return idx, nil
}
