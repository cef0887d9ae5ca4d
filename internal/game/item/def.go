// Package item defines the static equipment catalog: item definitions loaded
// from YAML, rarity display data, and pure equip-eligibility checks.
package item

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type constants for ItemDef.Type, in bag sort order.
const (
	TypeWeapon     = "weapon"
	TypeArmor      = "armor"
	TypeAccessory  = "accessory"
	TypeConsumable = "consumable"
	TypeMaterial   = "material"
	TypeQuest      = "quest"
)

// typeSortOrder maps each item type to its bag sort rank (lower sorts first).
var typeSortOrder = map[string]int{
	TypeWeapon:     0,
	TypeArmor:      1,
	TypeAccessory:  2,
	TypeConsumable: 3,
	TypeMaterial:   4,
	TypeQuest:      5,
}

// TypeSortOrder returns the bag sort rank for an item type.
//
// Postcondition: unknown types sort after all known types.
func TypeSortOrder(itemType string) int {
	if rank, ok := typeSortOrder[itemType]; ok {
		return rank
	}
	return len(typeSortOrder)
}

// EquipSlot identifies one of the fixed equipment positions.
type EquipSlot string

const (
	SlotWeapon  EquipSlot = "weapon"
	SlotOffhand EquipSlot = "offhand"
	SlotHead    EquipSlot = "head"
	SlotChest   EquipSlot = "chest"
	SlotLegs    EquipSlot = "legs"
	SlotBoots   EquipSlot = "boots"
	SlotAmulet  EquipSlot = "amulet"
	SlotRing    EquipSlot = "ring"
)

// EquipSlots lists every equipment slot in display order.
var EquipSlots = []EquipSlot{
	SlotWeapon, SlotOffhand, SlotHead, SlotChest,
	SlotLegs, SlotBoots, SlotAmulet, SlotRing,
}

// validEquipSlots is the set of accepted equip_slot values.
var validEquipSlots = func() map[EquipSlot]bool {
	m := make(map[EquipSlot]bool, len(EquipSlots))
	for _, s := range EquipSlots {
		m[s] = true
	}
	return m
}()

// StatBonuses holds the flat combat and primary-stat bonuses an item grants
// while equipped.
type StatBonuses struct {
	Attack  int     `yaml:"attack"`
	Defense int     `yaml:"defense"`
	Speed   float64 `yaml:"speed"`
	Crit    float64 `yaml:"crit"`
	// Primary maps primary stat names to flat bonuses.
	Primary map[string]int `yaml:"primary"`
}

// ItemDef defines the static properties of a catalog item loaded from YAML.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Rarity      string `yaml:"rarity"`
	// LevelRequirement is the minimum character level to equip; 0 = none.
	LevelRequirement int `yaml:"level_requirement"`
	// WeaponType is the weapon subtype ("sword", "staff", ...) checked
	// against the class allow-list. Only meaningful for weapons.
	WeaponType string `yaml:"weapon_type"`
	// ArmorType is the armor category ("cloth", "leather", "heavy", ...)
	// checked against the class allow-list. Only meaningful for armor.
	ArmorType string `yaml:"armor_type"`
	// EquipSlot is the slot this item occupies, or empty for non-equippables.
	EquipSlot EquipSlot `yaml:"equip_slot"`
	// TwoHanded weapons occupy the weapon slot and forbid any offhand item.
	TwoHanded bool `yaml:"two_handed"`
	// ClassRestriction limits the item to one class ID; empty = any class.
	ClassRestriction string      `yaml:"class_restriction"`
	Stackable        bool        `yaml:"stackable"`
	MaxStack         int         `yaml:"max_stack"`
	Bonuses          StatBonuses `yaml:"bonuses"`
	// SpecialEffects lists free-form effect tags consumed by the combat layer.
	SpecialEffects []string `yaml:"special_effects"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, fmt.Errorf("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("Name must not be empty"))
	}
	if _, ok := typeSortOrder[d.Type]; !ok {
		errs = append(errs, fmt.Errorf("Type must be one of weapon, armor, accessory, consumable, material, quest; got %q", d.Type))
	}
	if _, ok := rarityRank[d.Rarity]; !ok {
		errs = append(errs, fmt.Errorf("Rarity must be one of common, uncommon, rare, epic, legendary; got %q", d.Rarity))
	}
	if d.EquipSlot != "" && !validEquipSlots[d.EquipSlot] {
		errs = append(errs, fmt.Errorf("unknown equip slot %q", d.EquipSlot))
	}
	if d.TwoHanded && d.EquipSlot != SlotWeapon {
		errs = append(errs, fmt.Errorf("two-handed items must occupy the weapon slot"))
	}
	if d.Stackable && d.MaxStack < 2 {
		errs = append(errs, fmt.Errorf("stackable items must have max_stack >= 2, got %d", d.MaxStack))
	}
	if d.Stackable && d.EquipSlot != "" {
		errs = append(errs, fmt.Errorf("equippable items must not be stackable"))
	}
	if d.LevelRequirement < 0 {
		errs = append(errs, fmt.Errorf("level_requirement must be >= 0, got %d", d.LevelRequirement))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Equippable reports whether the item occupies an equipment slot.
func (d *ItemDef) Equippable() bool {
	return d.EquipSlot != ""
}

// StackLimit returns the effective maximum stack size: MaxStack for stackable
// items, 1 otherwise.
func (d *ItemDef) StackLimit() int {
	if d.Stackable {
		return d.MaxStack
	}
	return 1
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as a list
// of ItemDefs, validates every entry, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var defs []*ItemDef
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		for _, d := range defs {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
			}
		}
		items = append(items, defs...)
	}
	return items, nil
}
