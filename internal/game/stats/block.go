// Package stats implements the character stat engine: primary attributes,
// timed buffs, equipment bonuses, conditional modifiers, and the derived
// combat statistics recomputed from them on every mutation.
package stats

// Primary stat names used as buff targets and allocation keys.
const (
	StatStrength     = "strength"
	StatIntellect    = "intellect"
	StatWisdom       = "wisdom"
	StatDexterity    = "dexterity"
	StatConstitution = "constitution"
	StatCharisma     = "charisma"
)

// Derived stat names used as buff targets.
const (
	StatHP           = "hp"
	StatMP           = "mp"
	StatAttack       = "attack"
	StatDefense      = "defense"
	StatSpeed        = "speed"
	StatCrit         = "crit"
	StatDodge        = "dodge"
	StatMagicAttack  = "magic_attack"
	StatMagicDefense = "magic_defense"
)

// PrimaryBlock holds the six primary attributes.
//
// Invariant: effective values exposed by the engine are never negative.
type PrimaryBlock struct {
	Strength     int `json:"strength"`
	Intellect    int `json:"intellect"`
	Wisdom       int `json:"wisdom"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Charisma     int `json:"charisma"`
}

// Get returns the value of the named primary stat, or 0 for unknown names.
func (p PrimaryBlock) Get(name string) int {
	switch name {
	case StatStrength:
		return p.Strength
	case StatIntellect:
		return p.Intellect
	case StatWisdom:
		return p.Wisdom
	case StatDexterity:
		return p.Dexterity
	case StatConstitution:
		return p.Constitution
	case StatCharisma:
		return p.Charisma
	}
	return 0
}

// add returns the named stat incremented by delta, leaving other stats as-is.
func (p PrimaryBlock) add(name string, delta int) PrimaryBlock {
	switch name {
	case StatStrength:
		p.Strength += delta
	case StatIntellect:
		p.Intellect += delta
	case StatWisdom:
		p.Wisdom += delta
	case StatDexterity:
		p.Dexterity += delta
	case StatConstitution:
		p.Constitution += delta
	case StatCharisma:
		p.Charisma += delta
	}
	return p
}

// clampNonNegative floors every stat at zero.
func (p PrimaryBlock) clampNonNegative() PrimaryBlock {
	floor := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	p.Strength = floor(p.Strength)
	p.Intellect = floor(p.Intellect)
	p.Wisdom = floor(p.Wisdom)
	p.Dexterity = floor(p.Dexterity)
	p.Constitution = floor(p.Constitution)
	p.Charisma = floor(p.Charisma)
	return p
}

// IsPrimaryStat reports whether name is one of the six primary stat names.
func IsPrimaryStat(name string) bool {
	switch name {
	case StatStrength, StatIntellect, StatWisdom, StatDexterity, StatConstitution, StatCharisma:
		return true
	}
	return false
}

// DerivedBlock holds the nine combat statistics computed from the primary
// block, equipment snapshot, buffs, and conditional modifiers. It is a cache:
// the engine recomputes it on every mutation and callers must never write it.
type DerivedBlock struct {
	MaxHP        int     `json:"max_hp"`
	MaxMP        int     `json:"max_mp"`
	Attack       int     `json:"attack"`
	Defense      int     `json:"defense"`
	Speed        float64 `json:"speed"`
	Crit         float64 `json:"crit"`
	Dodge        float64 `json:"dodge"`
	MagicAttack  int     `json:"magic_attack"`
	MagicDefense int     `json:"magic_defense"`
}

// EquipmentSnapshot holds the flat totals aggregated from equipped items,
// pushed into the engine by the inventory layer on every equip or unequip.
type EquipmentSnapshot struct {
	Attack  int     `json:"attack"`
	Defense int     `json:"defense"`
	Speed   float64 `json:"speed"`
	Crit    float64 `json:"crit"`
	// Primary maps primary stat names to flat bonuses.
	Primary map[string]int `json:"primary,omitempty"`
}

// clone returns a deep copy of the snapshot.
func (e EquipmentSnapshot) clone() EquipmentSnapshot {
	out := e
	if e.Primary != nil {
		out.Primary = make(map[string]int, len(e.Primary))
		for k, v := range e.Primary {
			out.Primary[k] = v
		}
	}
	return out
}
