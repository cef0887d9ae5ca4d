// Package leveling tracks experience, levels, and unspent point budgets.
package leveling

import (
	"math"

	"github.com/duskhollow/emberfall/internal/game/ruleset"
)

// Curve maps levels to cumulative XP requirements. Levels covered by the
// precomputed table use it directly; later levels fall back to
// round(baseXP × level^exponent).
type Curve struct {
	table    []int64
	baseXP   float64
	exponent float64
	maxLevel int
}

// NewCurve builds a Curve from the balance document's XP section.
//
// Precondition: bal must have passed Validate.
func NewCurve(bal *ruleset.Balance) Curve {
	table := make([]int64, len(bal.XPCurve.Table))
	copy(table, bal.XPCurve.Table)
	return Curve{
		table:    table,
		baseXP:   bal.XPCurve.BaseXP,
		exponent: bal.XPCurve.Exponent,
		maxLevel: bal.MaxLevel,
	}
}

// XPForLevel returns the cumulative XP required to reach the given level.
//
// Postcondition: non-decreasing in level; levels <= 1 require 0 XP.
func (c Curve) XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	// table[0] holds the requirement for level 2.
	if idx := level - 2; idx < len(c.table) {
		return c.table[idx]
	}
	return int64(math.Round(c.baseXP * math.Pow(float64(level), c.exponent)))
}

// MaxLevel returns the level cap.
func (c Curve) MaxLevel() int {
	return c.maxLevel
}

// XPToNext returns the XP still needed from totalXP to reach level+1.
// At or past the level cap it reports positive infinity.
func (c Curve) XPToNext(level int, totalXP int64) float64 {
	if level >= c.maxLevel {
		return math.Inf(1)
	}
	needed := c.XPForLevel(level+1) - totalXP
	if needed < 0 {
		return 0
	}
	return float64(needed)
}

// Progress returns the fraction of the way from the current level's threshold
// to the next, clamped to [0, 1]. At the level cap it reports 1.
func (c Curve) Progress(level int, totalXP int64) float64 {
	if level >= c.maxLevel {
		return 1
	}
	floor := c.XPForLevel(level)
	ceil := c.XPForLevel(level + 1)
	if ceil <= floor {
		return 1
	}
	frac := float64(totalXP-floor) / float64(ceil-floor)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
