package item

import (
	"fmt"
	"slices"
)

// Catalog holds all known ItemDefs keyed by ID. It is immutable after loading
// and safe for concurrent reads; construct one per game session rather than
// sharing ambient package state.
type Catalog struct {
	defs map[string]*ItemDef
}

// NewCatalog returns an empty Catalog.
//
// Postcondition: the internal map is initialised.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*ItemDef)}
}

// Register adds d to the catalog.
//
// Precondition: d must not be nil and must have passed Validate.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID is
// already registered.
func (c *Catalog) Register(d *ItemDef) error {
	if _, exists := c.defs[d.ID]; exists {
		return fmt.Errorf("item: Catalog.Register: item ID %q already registered", d.ID)
	}
	c.defs[d.ID] = d
	return nil
}

// LoadCatalog reads every item file in dir and returns a populated Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Catalog or a non-nil error.
func LoadCatalog(dir string) (*Catalog, error) {
	defs, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	c := NewCatalog()
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (c *Catalog) Item(id string) (*ItemDef, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// Exists reports whether an item with the given id is registered.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.defs[id]
	return ok
}

// SpecialEffects returns a copy of the item's special effect tags, or nil if
// the item is unknown or has none.
func (c *Catalog) SpecialEffects(id string) []string {
	d, ok := c.defs[id]
	if !ok || len(d.SpecialEffects) == 0 {
		return nil
	}
	return slices.Clone(d.SpecialEffects)
}

// Len returns the number of registered items.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// All returns all registered ItemDefs in unspecified order.
//
// Postcondition: the slice is a new allocation; the pointed-to defs are shared.
func (c *Catalog) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	return out
}

// CanEquip reports whether a character of the given class and level may equip
// the item. It fails when the item is not equippable, the level requirement
// is unmet, the item is restricted to a different class, or the item's weapon
// or armor subtype is absent from the class allow-list.
//
// Precondition: d must not be nil.
func CanEquip(d *ItemDef, classID string, level int, allowedWeaponTypes, allowedArmorTypes []string) bool {
	if !d.Equippable() {
		return false
	}
	if level < d.LevelRequirement {
		return false
	}
	if d.ClassRestriction != "" && d.ClassRestriction != classID {
		return false
	}
	if d.Type == TypeWeapon && d.WeaponType != "" && !slices.Contains(allowedWeaponTypes, d.WeaponType) {
		return false
	}
	if d.Type == TypeArmor && d.ArmorType != "" && !slices.Contains(allowedArmorTypes, d.ArmorType) {
		return false
	}
	return true
}

// SumBonuses aggregates the flat stat bonuses of a set of equipped items.
//
// Postcondition: the Primary map is always non-nil.
func SumBonuses(defs []*ItemDef) StatBonuses {
	total := StatBonuses{Primary: make(map[string]int)}
	for _, d := range defs {
		if d == nil {
			continue
		}
		total.Attack += d.Bonuses.Attack
		total.Defense += d.Bonuses.Defense
		total.Speed += d.Bonuses.Speed
		total.Crit += d.Bonuses.Crit
		for name, v := range d.Bonuses.Primary {
			total.Primary[name] += v
		}
	}
	return total
}
