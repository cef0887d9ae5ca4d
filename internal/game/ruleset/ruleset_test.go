package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhollow/emberfall/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadClasses_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "berserker.yaml"), `
id: berserker
name: "Berserker"
description: "Frontline damage dealer that grows stronger as it bleeds."
base_stats:
  strength: 14
  intellect: 6
  wisdom: 6
  dexterity: 10
  constitution: 12
  charisma: 8
hp_per_level: 8
mp_per_level: 2
allowed_weapon_types:
  - axe
  - sword
allowed_armor_types:
  - heavy
  - medium
melee: true
skill_branch: berserker
`)
	classes, err := ruleset.LoadClasses(dir)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	c := classes[0]
	assert.Equal(t, "berserker", c.ID)
	assert.Equal(t, 14, c.BaseStats["strength"])
	assert.Equal(t, 8, c.HPPerLevel)
	assert.Equal(t, 2, c.MPPerLevel)
	assert.Equal(t, []string{"axe", "sword"}, c.AllowedWeaponTypes)
	assert.True(t, c.Melee)
	assert.Equal(t, "berserker", c.SkillBranch)
}

func TestLoadClasses_RejectsUnknownStat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
id: bad
name: "Bad"
base_stats:
  luck: 5
hp_per_level: 6
`)
	_, err := ruleset.LoadClasses(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown base stat")
}

func TestLoadClasses_EmptyDir(t *testing.T) {
	classes, err := ruleset.LoadClasses(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestClassIndex_DuplicateID(t *testing.T) {
	classes := []*ruleset.Class{
		{ID: "mage", Name: "Mage", HPPerLevel: 4},
		{ID: "mage", Name: "Mage Copy", HPPerLevel: 4},
	}
	_, err := ruleset.ClassIndex(classes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate class ID")
}

func TestLoadBalance_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "balance.yaml")
	writeFile(t, path, `
max_level: 50
stat_points_per_level: 3
skill_points_per_level: 1
max_crit_percent: 75.0
max_dodge_percent: 50.0
party_size_cap: 6
xp_curve:
  table: [100, 300, 700, 1500]
  base_xp: 80.0
  exponent: 2.2
berserker_thresholds:
  - hp_percent: 15
    multiplier: 1.5
  - hp_percent: 30
    multiplier: 1.3
  - hp_percent: 50
    multiplier: 1.15
`)
	b, err := ruleset.LoadBalance(path)
	require.NoError(t, err)
	assert.Equal(t, 50, b.MaxLevel)
	assert.Equal(t, 6, b.PartySizeCap)
	assert.InDelta(t, 75.0, b.MaxCritPercent, 1e-9)
	require.Len(t, b.BerserkerThresholds, 3)
	assert.InDelta(t, 1.5, b.BerserkerThresholds[0].Multiplier, 1e-9)
}

func TestLoadBalance_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "balance.yaml")
	writeFile(t, path, `
max_level: 50
mystery_knob: 12
`)
	_, err := ruleset.LoadBalance(path)
	require.Error(t, err)
}

func TestBalance_Validate_DescendingXPTable(t *testing.T) {
	b := ruleset.Balance{
		MaxLevel:        50,
		MaxCritPercent:  75,
		MaxDodgePercent: 50,
		PartySizeCap:    6,
		XPCurve:         ruleset.XPCurve{Table: []int64{100, 50}, BaseXP: 80, Exponent: 2.2},
	}
	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decreases")
}

func TestBalance_Validate_FormulaBelowTableEnd(t *testing.T) {
	// table[0] puts level 2 at 5000 XP, but the formula yields only
	// round(80 * 3^2.2) = 897 for level 3, so the cumulative curve would dip.
	b := ruleset.Balance{
		MaxLevel:        50,
		MaxCritPercent:  75,
		MaxDodgePercent: 50,
		PartySizeCap:    6,
		XPCurve:         ruleset.XPCurve{Table: []int64{5000}, BaseXP: 80, Exponent: 2.2},
	}
	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the last table entry")
}

func TestBalance_Validate_FormulaUnreachableAtCap(t *testing.T) {
	// Same discontinuity, but the cap sits inside the table's range so the
	// formula is never consulted and the document is fine.
	b := ruleset.Balance{
		MaxLevel:        2,
		MaxCritPercent:  75,
		MaxDodgePercent: 50,
		PartySizeCap:    6,
		XPCurve:         ruleset.XPCurve{Table: []int64{5000}, BaseXP: 80, Exponent: 2.2},
	}
	require.NoError(t, b.Validate())
}

func TestBalance_Validate_UnsortedThresholds(t *testing.T) {
	b := ruleset.Balance{
		MaxLevel:        50,
		MaxCritPercent:  75,
		MaxDodgePercent: 50,
		PartySizeCap:    6,
		XPCurve:         ruleset.XPCurve{BaseXP: 80, Exponent: 2.2},
		BerserkerThresholds: []ruleset.BerserkerThreshold{
			{HPPercent: 50, Multiplier: 1.15},
			{HPPercent: 15, Multiplier: 1.5},
		},
	}
	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sorted ascending")
}
