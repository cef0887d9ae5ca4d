package ruleset

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// XPCurve defines how cumulative experience maps to levels. Levels covered by
// Table use the table value directly; levels beyond it use
// round(base_xp * level^exponent).
type XPCurve struct {
	// Table holds cumulative XP required to reach level i+1 (Table[0] is the
	// XP needed for level 2). May be empty, in which case the formula is used
	// for every level.
	Table []int64 `yaml:"table"`
	// BaseXP is the formula coefficient used past the table's range.
	BaseXP float64 `yaml:"base_xp"`
	// Exponent is the formula exponent used past the table's range.
	Exponent float64 `yaml:"exponent"`
}

// BerserkerThreshold pairs an HP-percentage ceiling with an attack multiplier.
// Thresholds are scanned in order; the first entry whose HPPercent is at or
// above the character's current HP percentage wins.
type BerserkerThreshold struct {
	HPPercent  float64 `yaml:"hp_percent"`
	Multiplier float64 `yaml:"multiplier"`
}

// Balance is the engine tuning document loaded once at startup.
type Balance struct {
	MaxLevel            int     `yaml:"max_level"`
	StatPointsPerLevel  int     `yaml:"stat_points_per_level"`
	SkillPointsPerLevel int     `yaml:"skill_points_per_level"`
	MaxCritPercent      float64 `yaml:"max_crit_percent"`
	MaxDodgePercent     float64 `yaml:"max_dodge_percent"`
	PartySizeCap        int     `yaml:"party_size_cap"`
	XPCurve             XPCurve `yaml:"xp_curve"`
	// BerserkerThresholds must be sorted ascending by hp_percent so the
	// lowest (most restrictive) band is checked first.
	BerserkerThresholds []BerserkerThreshold `yaml:"berserker_thresholds"`
}

// Validate checks all balance invariants.
//
// Postcondition: Returns nil iff the document is internally consistent.
func (b *Balance) Validate() error {
	if b.MaxLevel < 1 {
		return fmt.Errorf("balance: max_level must be >= 1, got %d", b.MaxLevel)
	}
	if b.StatPointsPerLevel < 0 || b.SkillPointsPerLevel < 0 {
		return fmt.Errorf("balance: per-level point grants must be >= 0")
	}
	if b.MaxCritPercent <= 0 || b.MaxCritPercent > 100 {
		return fmt.Errorf("balance: max_crit_percent must be in (0, 100], got %g", b.MaxCritPercent)
	}
	if b.MaxDodgePercent <= 0 || b.MaxDodgePercent > 100 {
		return fmt.Errorf("balance: max_dodge_percent must be in (0, 100], got %g", b.MaxDodgePercent)
	}
	if b.PartySizeCap < 1 {
		return fmt.Errorf("balance: party_size_cap must be >= 1, got %d", b.PartySizeCap)
	}
	if b.XPCurve.BaseXP <= 0 {
		return fmt.Errorf("balance: xp_curve.base_xp must be > 0, got %g", b.XPCurve.BaseXP)
	}
	if b.XPCurve.Exponent < 1 {
		return fmt.Errorf("balance: xp_curve.exponent must be >= 1, got %g", b.XPCurve.Exponent)
	}
	var prev int64 = -1
	for i, xp := range b.XPCurve.Table {
		if xp < prev {
			return fmt.Errorf("balance: xp_curve.table[%d] (%d) decreases from previous entry (%d)", i, xp, prev)
		}
		prev = xp
	}
	// table[n-1] is the requirement for level n+1; the formula takes over at
	// level n+2 and must keep the cumulative curve non-decreasing there.
	if n := len(b.XPCurve.Table); n > 0 && b.MaxLevel > n+1 {
		first := int64(math.Round(b.XPCurve.BaseXP * math.Pow(float64(n+2), b.XPCurve.Exponent)))
		if first < b.XPCurve.Table[n-1] {
			return fmt.Errorf("balance: xp_curve formula yields %d at level %d, below the last table entry (%d)", first, n+2, b.XPCurve.Table[n-1])
		}
	}
	var prevPct float64 = -1
	for i, t := range b.BerserkerThresholds {
		if t.HPPercent <= 0 || t.HPPercent > 100 {
			return fmt.Errorf("balance: berserker_thresholds[%d].hp_percent must be in (0, 100], got %g", i, t.HPPercent)
		}
		if t.Multiplier < 1 {
			return fmt.Errorf("balance: berserker_thresholds[%d].multiplier must be >= 1, got %g", i, t.Multiplier)
		}
		if t.HPPercent <= prevPct {
			return fmt.Errorf("balance: berserker_thresholds must be sorted ascending by hp_percent")
		}
		prevPct = t.HPPercent
	}
	return nil
}

// LoadBalance reads and validates the balance document at path.
//
// Precondition: path must reference a readable YAML file.
// Postcondition: Returns a validated Balance or a non-nil error.
func LoadBalance(path string) (*Balance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading balance file %q: %w", path, err)
	}
	var b Balance
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("parsing balance file %q: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
