package stats

import (
	"math"

	"github.com/google/uuid"
)

// State is the serializable stat-engine state. Constructors deep-clone it on
// the way in and GetState returns an independent copy, so the save layer can
// marshal it verbatim.
type State struct {
	CharacterID string `json:"character_id"`
	// Base is the immutable per-class starting block.
	Base PrimaryBlock `json:"base"`
	// Allocated accumulates player-spent stat points; monotonically increasing.
	Allocated  PrimaryBlock      `json:"allocated"`
	Level      int               `json:"level"`
	HPPerLevel int               `json:"hp_per_level"`
	MPPerLevel int               `json:"mp_per_level"`
	CurrentHP  int               `json:"current_hp"`
	CurrentMP  int               `json:"current_mp"`
	Buffs      []Buff            `json:"buffs,omitempty"`
	Equipment  EquipmentSnapshot `json:"equipment"`
	Modifiers  []Modifier        `json:"modifiers,omitempty"`
}

// clone returns a deep copy of the state.
func (s State) clone() State {
	out := s
	if s.Buffs != nil {
		out.Buffs = make([]Buff, len(s.Buffs))
		copy(out.Buffs, s.Buffs)
	}
	out.Equipment = s.Equipment.clone()
	if s.Modifiers != nil {
		out.Modifiers = make([]Modifier, len(s.Modifiers))
		for i, m := range s.Modifiers {
			out.Modifiers[i] = m.clone()
		}
	}
	return out
}

// Caps bounds the percentage-based derived stats, taken from the balance
// document.
type Caps struct {
	MaxCrit  float64
	MaxDodge float64
}

// Engine computes derived combat stats and owns the mutation surface for one
// character's stat state. Not safe for concurrent use; confine each instance
// to a single owning goroutine.
type Engine struct {
	state   State
	caps    Caps
	derived DerivedBlock
}

// NewEngine constructs an Engine from a serializable state and stat caps.
// The incoming state is deep-cloned; the caller's copy is never aliased.
//
// Postcondition: the derived block is computed and current HP/MP are clamped
// to the recomputed maxima.
func NewEngine(state State, caps Caps) *Engine {
	e := &Engine{state: state.clone(), caps: caps}
	if e.state.Level < 1 {
		e.state.Level = 1
	}
	e.recompute()
	return e
}

// GetState returns a deep, independent copy of the engine state, safe to
// serialize verbatim.
func (e *Engine) GetState() State {
	return e.state.clone()
}

// EffectivePrimary returns the primary block after base, allocation,
// equipment bonuses, and primary-stat buffs, floored at zero.
func (e *Engine) EffectivePrimary() PrimaryBlock {
	p := PrimaryBlock{
		Strength:     e.state.Base.Strength + e.state.Allocated.Strength,
		Intellect:    e.state.Base.Intellect + e.state.Allocated.Intellect,
		Wisdom:       e.state.Base.Wisdom + e.state.Allocated.Wisdom,
		Dexterity:    e.state.Base.Dexterity + e.state.Allocated.Dexterity,
		Constitution: e.state.Base.Constitution + e.state.Allocated.Constitution,
		Charisma:     e.state.Base.Charisma + e.state.Allocated.Charisma,
	}
	for name, bonus := range e.state.Equipment.Primary {
		p = p.add(name, bonus)
	}
	for _, name := range []string{StatStrength, StatIntellect, StatWisdom, StatDexterity, StatConstitution, StatCharisma} {
		if total := buffTotal(e.state.Buffs, name); total != 0 {
			p = p.add(name, int(math.Round(total)))
		}
	}
	return p.clampNonNegative()
}

// Derived returns the current derived block. The returned value is a copy.
func (e *Engine) Derived() DerivedBlock {
	return e.derived
}

// Primary returns the value of one effective primary stat by name.
func (e *Engine) Primary(name string) int {
	return e.EffectivePrimary().Get(name)
}

// Level returns the character level.
func (e *Engine) Level() int { return e.state.Level }

// CurrentHP returns current hit points.
func (e *Engine) CurrentHP() int { return e.state.CurrentHP }

// CurrentMP returns current mana points.
func (e *Engine) CurrentMP() int { return e.state.CurrentMP }

// AllocatePoint permanently raises one primary stat by a single point.
// The caller is responsible for debiting the leveling engine's unspent
// counter first.
//
// Postcondition: returns false and leaves state unchanged for unknown stat
// names; otherwise the derived block is recomputed.
func (e *Engine) AllocatePoint(stat string) bool {
	if !IsPrimaryStat(stat) {
		return false
	}
	e.state.Allocated = e.state.Allocated.add(stat, 1)
	e.recompute()
	return true
}

// SetLevel sets the character level and recomputes.
//
// Precondition: level >= 1; lower values are lifted to 1.
func (e *Engine) SetLevel(level int) {
	if level < 1 {
		level = 1
	}
	e.state.Level = level
	e.recompute()
}

// SetEquipment replaces the equipment snapshot and recomputes.
func (e *Engine) SetEquipment(snap EquipmentSnapshot) {
	e.state.Equipment = snap.clone()
	e.recompute()
}

// AddBuff attaches a timed or permanent buff and returns its generated ID.
// duration is in logical ticks; PermanentDuration never expires.
func (e *Engine) AddBuff(stat string, magnitude float64, duration int, source string) string {
	id := uuid.New().String()
	e.state.Buffs = append(e.state.Buffs, Buff{
		ID: id, Stat: stat, Magnitude: magnitude, Duration: duration, Source: source,
	})
	e.recompute()
	return id
}

// AddNamedBuff attaches a buff under a caller-chosen ID, replacing any
// existing buff with that ID in place. Buffs whose identity must survive a
// save/load round-trip use this instead of AddBuff.
func (e *Engine) AddNamedBuff(id, stat string, magnitude float64, duration int, source string) {
	buff := Buff{ID: id, Stat: stat, Magnitude: magnitude, Duration: duration, Source: source}
	for i, b := range e.state.Buffs {
		if b.ID == id {
			e.state.Buffs[i] = buff
			e.recompute()
			return
		}
	}
	e.state.Buffs = append(e.state.Buffs, buff)
	e.recompute()
}

// RemoveBuff removes the buff with the given ID.
//
// Postcondition: returns false if no buff with that ID exists; state is
// unchanged in that case.
func (e *Engine) RemoveBuff(id string) bool {
	for i, b := range e.state.Buffs {
		if b.ID == id {
			e.state.Buffs = append(e.state.Buffs[:i], e.state.Buffs[i+1:]...)
			e.recompute()
			return true
		}
	}
	return false
}

// Buffs returns a snapshot copy of the active buff list.
func (e *Engine) Buffs() []Buff {
	out := make([]Buff, len(e.state.Buffs))
	copy(out, e.state.Buffs)
	return out
}

// TickBuffs advances buff timers by elapsed ticks, expiring any whose
// duration reaches zero, and returns the IDs of expired buffs.
//
// Precondition: elapsed > 0; non-positive values are a no-op.
// Postcondition: permanent buffs are untouched; the derived block is
// recomputed when any buff expires.
func (e *Engine) TickBuffs(elapsed int) []string {
	if elapsed <= 0 {
		return nil
	}
	var expired []string
	kept := e.state.Buffs[:0]
	for _, b := range e.state.Buffs {
		if b.Duration == PermanentDuration {
			kept = append(kept, b)
			continue
		}
		b.Duration -= elapsed
		if b.Duration <= 0 {
			expired = append(expired, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	e.state.Buffs = kept
	if len(expired) > 0 {
		e.recompute()
	}
	return expired
}

// AddModifier registers a conditional modifier and recomputes.
func (e *Engine) AddModifier(m Modifier) {
	e.state.Modifiers = append(e.state.Modifiers, m.clone())
	e.recompute()
}

// RemoveModifier removes the modifier with the given ID.
//
// Postcondition: returns false if no modifier with that ID exists.
func (e *Engine) RemoveModifier(id string) bool {
	for i, m := range e.state.Modifiers {
		if m.ID == id {
			e.state.Modifiers = append(e.state.Modifiers[:i], e.state.Modifiers[i+1:]...)
			e.recompute()
			return true
		}
	}
	return false
}

// SetCurrentHP sets current hit points, clamped to [0, MaxHP], and
// recomputes so HP-conditional modifiers see the new value.
func (e *Engine) SetCurrentHP(hp int) {
	e.state.CurrentHP = clampInt(hp, 0, e.derived.MaxHP)
	e.recompute()
}

// SetCurrentMP sets current mana points, clamped to [0, MaxMP].
func (e *Engine) SetCurrentMP(mp int) {
	e.state.CurrentMP = clampInt(mp, 0, e.derived.MaxMP)
}

// recompute rebuilds the derived block from the current inputs and re-clamps
// current HP/MP to the new maxima. Clamping only ever reduces current values;
// a max-HP increase never restores spent HP.
func (e *Engine) recompute() {
	p := e.EffectivePrimary()
	eq := e.state.Equipment
	buffs := e.state.Buffs
	level := e.state.Level

	hp := float64(p.Constitution*8) + float64(level*e.state.HPPerLevel) + buffTotal(buffs, StatHP)
	mp := float64(p.Intellect*6+p.Wisdom*3) + float64(level*e.state.MPPerLevel) + buffTotal(buffs, StatMP)

	maxHP := int(math.Round(hp))
	if maxHP < 0 {
		maxHP = 0
	}
	currentHP := clampInt(e.state.CurrentHP, 0, maxHP)

	attackBase := float64(p.Strength*2+eq.Attack) + buffTotal(buffs, StatAttack)
	mult := 1.0
	for _, m := range e.state.Modifiers {
		mult *= m.attackMultiplier(currentHP, maxHP)
	}

	defense := float64(p.Constitution+eq.Defense) + buffTotal(buffs, StatDefense)
	speed := float64(p.Dexterity)*1.5 + eq.Speed + buffTotal(buffs, StatSpeed)
	crit := float64(p.Dexterity)*0.5 + float64(p.Charisma)*0.1 + eq.Crit + buffTotal(buffs, StatCrit)
	dodge := float64(p.Dexterity)*0.3 + speed*0.1 + buffTotal(buffs, StatDodge)
	magicAttack := float64(p.Intellect)*2.5 + float64(p.Wisdom)*0.5 + buffTotal(buffs, StatMagicAttack)
	magicDefense := float64(p.Wisdom)*2 + float64(p.Intellect)*0.5 + buffTotal(buffs, StatMagicDefense)

	e.derived = DerivedBlock{
		MaxHP:        maxHP,
		MaxMP:        int(math.Round(mp)),
		Attack:       int(math.Round(attackBase * mult)),
		Defense:      int(math.Round(defense)),
		Speed:        round1(speed),
		Crit:         round1(math.Min(crit, e.caps.MaxCrit)),
		Dodge:        round1(math.Min(dodge, e.caps.MaxDodge)),
		MagicAttack:  int(math.Round(magicAttack)),
		MagicDefense: int(math.Round(magicDefense)),
	}
	if e.derived.MaxMP < 0 {
		e.derived.MaxMP = 0
	}

	e.state.CurrentHP = currentHP
	e.state.CurrentMP = clampInt(e.state.CurrentMP, 0, e.derived.MaxMP)
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
