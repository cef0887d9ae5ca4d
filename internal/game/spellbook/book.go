package spellbook

import "math"

// FailReason tags why a cast check rejected. Checks apply in a fixed order:
// unknown spell, not learned, level too low, not enough mana, on cooldown.
type FailReason string

const (
	ReasonNone          FailReason = ""
	ReasonUnknownSpell  FailReason = "unknown_spell"
	ReasonNotLearned    FailReason = "not_learned"
	ReasonLevelTooLow   FailReason = "level_too_low"
	ReasonNotEnoughMana FailReason = "not_enough_mana"
	ReasonOnCooldown    FailReason = "on_cooldown"
)

// Caster carries the caster-side inputs a cast check and damage roll need.
type Caster struct {
	Level int
	// Mana is the caster's current MP; the book never debits it, it reports
	// ManaSpent for the owner to apply.
	Mana        int
	MagicAttack int
	// Attributes supplies primary stat values for spell scaling lookups.
	Attributes map[string]int
}

// CastResult reports the outcome of a cast attempt.
type CastResult struct {
	Success bool
	Reason  FailReason
	SpellID string
	// ManaSpent is the cost the caller must debit on success, 0 otherwise.
	ManaSpent int
	// Damage is the computed spell damage, 0 on failure.
	Damage int
	// Cooldown is the lockout applied to the spell, in seconds.
	Cooldown float64
}

// State is the serializable per-character spell book state.
type State struct {
	// Learned lists the IDs of learned spells.
	Learned []string `json:"learned,omitempty"`
	// Cooldowns maps spell IDs to remaining lockout in seconds.
	Cooldowns map[string]float64 `json:"cooldowns,omitempty"`
}

// Book tracks one character's learned spells and active cooldowns over a
// shared immutable Registry. Not safe for concurrent use.
type Book struct {
	registry  *Registry
	learned   map[string]bool
	cooldowns map[string]float64
}

// NewBook constructs a Book from a serializable state and the static
// registry. Learned entries and cooldowns for unknown spells are dropped;
// non-positive cooldowns are dropped.
func NewBook(state State, registry *Registry) *Book {
	b := &Book{
		registry:  registry,
		learned:   make(map[string]bool),
		cooldowns: make(map[string]float64),
	}
	for _, id := range state.Learned {
		if _, ok := registry.Spell(id); ok {
			b.learned[id] = true
		}
	}
	for id, remaining := range state.Cooldowns {
		if _, ok := registry.Spell(id); ok && remaining > 0 {
			b.cooldowns[id] = remaining
		}
	}
	return b
}

// GetState returns a deep, independent copy of the book state.
func (b *Book) GetState() State {
	st := State{}
	if len(b.learned) > 0 {
		st.Learned = make([]string, 0, len(b.learned))
		for id := range b.learned {
			st.Learned = append(st.Learned, id)
		}
	}
	if len(b.cooldowns) > 0 {
		st.Cooldowns = make(map[string]float64, len(b.cooldowns))
		for id, remaining := range b.cooldowns {
			st.Cooldowns[id] = remaining
		}
	}
	return st
}

// Knows reports whether the spell has been learned.
func (b *Book) Knows(spellID string) bool {
	return b.learned[spellID]
}

// Learn adds the spell to the learned set.
//
// Postcondition: returns false when the spell is unknown to the registry or
// already learned.
func (b *Book) Learn(spellID string) bool {
	if _, ok := b.registry.Spell(spellID); !ok {
		return false
	}
	if b.learned[spellID] {
		return false
	}
	b.learned[spellID] = true
	return true
}

// Forget removes the spell from the learned set and clears its cooldown.
func (b *Book) Forget(spellID string) bool {
	if !b.learned[spellID] {
		return false
	}
	delete(b.learned, spellID)
	delete(b.cooldowns, spellID)
	return true
}

// CooldownRemaining returns the remaining lockout in seconds, 0 when ready.
func (b *Book) CooldownRemaining(spellID string) float64 {
	return b.cooldowns[spellID]
}

// CanCast checks the spell against the caster in fixed order and returns the
// first failing reason, or ReasonNone when the cast may proceed.
func (b *Book) CanCast(spellID string, caster Caster) FailReason {
	def, ok := b.registry.Spell(spellID)
	if !ok {
		return ReasonUnknownSpell
	}
	if !b.learned[spellID] {
		return ReasonNotLearned
	}
	if caster.Level < def.RequiredLevel {
		return ReasonLevelTooLow
	}
	if caster.Mana < def.ManaCost {
		return ReasonNotEnoughMana
	}
	if b.cooldowns[spellID] > 0 {
		return ReasonOnCooldown
	}
	return ReasonNone
}

// Cast attempts the spell. On success the spell's cooldown starts and the
// result carries the damage and the mana cost for the caller to debit.
//
// Damage is round(scaledBase × (1 + magicAttack/100) × elementalModifier),
// where scaledBase adds statValue × factor for each scaling entry.
//
// Postcondition: on failure the result carries the CanCast reason and the
// book state is unchanged.
func (b *Book) Cast(spellID string, caster Caster, elementalModifier float64) CastResult {
	if reason := b.CanCast(spellID, caster); reason != ReasonNone {
		return CastResult{Reason: reason, SpellID: spellID}
	}
	def, _ := b.registry.Spell(spellID)

	base := def.BaseDamage
	for _, s := range def.Scaling {
		base += float64(caster.Attributes[s.Stat]) * s.Factor
	}
	damage := int(math.Round(base * (1 + float64(caster.MagicAttack)/100) * elementalModifier))
	if damage < 0 {
		damage = 0
	}

	if def.Cooldown > 0 {
		b.cooldowns[spellID] = def.Cooldown
	}
	return CastResult{
		Success:   true,
		SpellID:   spellID,
		ManaSpent: def.ManaCost,
		Damage:    damage,
		Cooldown:  def.Cooldown,
	}
}

// UpdateCooldowns advances every active cooldown by elapsed seconds, dropping
// entries that reach zero.
//
// Precondition: elapsed must be >= 0.
func (b *Book) UpdateCooldowns(elapsed float64) {
	for id, remaining := range b.cooldowns {
		remaining -= elapsed
		if remaining <= 0 {
			delete(b.cooldowns, id)
		} else {
			b.cooldowns[id] = remaining
		}
	}
}
