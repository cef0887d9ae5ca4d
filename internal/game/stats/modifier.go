package stats

import "github.com/duskhollow/emberfall/internal/game/ruleset"

// ModifierKind discriminates the closed set of conditional modifier variants.
// Modifiers are data, not closures, so they survive save/load round-trips.
type ModifierKind string

const (
	// KindBerserkerBlood scales attack up as current HP drops, using the
	// threshold bands recorded on the modifier.
	KindBerserkerBlood ModifierKind = "berserker_blood"
)

// Modifier is a conditional multiplicative stat adjustment evaluated at every
// recomputation. Only the attack stat consumes modifiers today.
type Modifier struct {
	ID   string       `json:"id"`
	Kind ModifierKind `json:"kind"`
	// Thresholds carries the configuration for KindBerserkerBlood, sorted
	// ascending by HPPercent.
	Thresholds []ruleset.BerserkerThreshold `json:"thresholds,omitempty"`
}

// clone returns a deep copy of the modifier.
func (m Modifier) clone() Modifier {
	out := m
	if m.Thresholds != nil {
		out.Thresholds = make([]ruleset.BerserkerThreshold, len(m.Thresholds))
		copy(out.Thresholds, m.Thresholds)
	}
	return out
}

// attackMultiplier evaluates the modifier against the character's current
// condition and returns the attack multiplier to apply.
//
// Postcondition: returns 1.0 for unknown kinds or when no threshold matches.
func (m Modifier) attackMultiplier(currentHP, maxHP int) float64 {
	switch m.Kind {
	case KindBerserkerBlood:
		return berserkerMultiplier(m.Thresholds, currentHP, maxHP)
	}
	return 1.0
}

// berserkerMultiplier scans thresholds from most restrictive (lowest
// hp_percent) to least and keeps the first band where the current HP
// percentage is at or below the ceiling. The lower the HP, the larger the
// multiplier.
func berserkerMultiplier(thresholds []ruleset.BerserkerThreshold, currentHP, maxHP int) float64 {
	if maxHP <= 0 {
		return 1.0
	}
	pct := float64(currentHP) / float64(maxHP) * 100
	for _, t := range thresholds {
		if pct <= t.HPPercent {
			return t.Multiplier
		}
	}
	return 1.0
}

// NewBerserkerBlood builds the built-in low-HP attack modifier from balance
// configuration.
//
// Precondition: id must be non-empty; thresholds must be sorted ascending.
func NewBerserkerBlood(id string, thresholds []ruleset.BerserkerThreshold) Modifier {
	ts := make([]ruleset.BerserkerThreshold, len(thresholds))
	copy(ts, thresholds)
	return Modifier{ID: id, Kind: KindBerserkerBlood, Thresholds: ts}
}
