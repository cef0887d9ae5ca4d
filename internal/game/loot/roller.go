package loot

import (
	"github.com/google/uuid"

	"github.com/duskhollow/emberfall/internal/game/rng"
)

// Drop represents a single item instance in a roll result.
type Drop struct {
	ItemDefID  string
	InstanceID string
	Quantity   int
}

// Result holds the generated loot from a single roll.
type Result struct {
	Gold  int
	Drops []Drop
}

// Roller performs stateless probability rolls against loot tables. The
// randomness source is injected so rolls are reproducible under a seeded
// source in tests and simulations.
type Roller struct {
	src rng.Source
}

// NewRoller returns a Roller drawing from src.
//
// Precondition: src must not be nil.
func NewRoller(src rng.Source) *Roller {
	return &Roller{src: src}
}

// Roll rolls every entry in the table independently against
// min(1, chance × (1 + luckModifier)) and rolls gold scaled by luck.
//
// Precondition: t must have passed Validate; luckModifier must be >= 0.
// Postcondition: each drop's Quantity is in [MinQty, MaxQty]; guaranteed
// entries are still subject to the chance roll here (see RollBossLoot).
func (r *Roller) Roll(t *Table, luckModifier float64) Result {
	result := Result{Gold: r.rollGold(t.Gold, luckModifier)}
	for _, e := range t.Entries {
		if r.passes(e.Chance, luckModifier) {
			result.Drops = append(result.Drops, r.drop(e))
		}
	}
	return result
}

// RollBossLoot rolls like Roll but includes every guaranteed entry
// unconditionally before the chance pass over the remaining entries.
func (r *Roller) RollBossLoot(t *Table, luckModifier float64) Result {
	result := Result{Gold: r.rollGold(t.Gold, luckModifier)}
	for _, e := range t.Entries {
		if e.Guaranteed {
			result.Drops = append(result.Drops, r.drop(e))
			continue
		}
		if r.passes(e.Chance, luckModifier) {
			result.Drops = append(result.Drops, r.drop(e))
		}
	}
	return result
}

// passes rolls one entry's chance scaled by luck and capped at certainty.
func (r *Roller) passes(chance, luckModifier float64) bool {
	effective := chance * (1 + luckModifier)
	if effective > 1 {
		effective = 1
	}
	if effective <= 0 {
		return false
	}
	return r.src.Float64() < effective
}

// drop materializes one entry into a Drop with a fresh instance ID and a
// uniform quantity in [MinQty, MaxQty].
func (r *Roller) drop(e Entry) Drop {
	qty := e.MinQty
	if spread := e.MaxQty - e.MinQty; spread > 0 {
		qty += r.src.Intn(spread + 1)
	}
	return Drop{
		ItemDefID:  e.ItemID,
		InstanceID: uuid.New().String(),
		Quantity:   qty,
	}
}

// rollGold draws a uniform integer in [Min, Max] and scales it by
// 1 + luckModifier × 0.5.
func (r *Roller) rollGold(g *GoldDrop, luckModifier float64) int {
	if g == nil || g.Max <= 0 {
		return 0
	}
	gold := g.Min
	if spread := g.Max - g.Min; spread > 0 {
		gold += r.src.Intn(spread + 1)
	}
	return int(float64(gold) * (1 + luckModifier*0.5))
}
