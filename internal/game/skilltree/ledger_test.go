package skilltree_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/duskhollow/emberfall/internal/game/skilltree"
)

// berserkerBranch builds a small three-tier branch:
//
//	tier 1: bloodlust (max 3), toughness (max 2)
//	tier 2: frenzy (max 2, requires bloodlust)
//	tier 3: rampage (max 1, requires frenzy)
func berserkerBranch() *skilltree.Branch {
	return &skilltree.Branch{
		ID:      "berserker",
		ClassID: "berserker",
		Name:    "Berserker",
		Nodes: []skilltree.Node{
			{
				ID: "bloodlust", Name: "Bloodlust", Tier: 1, MaxRank: 3, Type: "passive",
				Effects: []skilltree.NodeEffect{
					{Type: "stat_bonus", Stat: "attack", PerRank: []float64{2, 4, 7}},
				},
			},
			{
				ID: "toughness", Name: "Toughness", Tier: 1, MaxRank: 2, Type: "passive",
				Effects: []skilltree.NodeEffect{
					{Type: "stat_bonus", Stat: "defense", Magnitude: 3},
				},
			},
			{
				ID: "frenzy", Name: "Frenzy", Tier: 2, MaxRank: 2, Type: "active",
				Prerequisites: []string{"bloodlust"},
			},
			{
				ID: "rampage", Name: "Rampage", Tier: 3, MaxRank: 1, Type: "keystone",
				Prerequisites: []string{"frenzy"},
			},
		},
	}
}

func newLedger(t interface {
	require.TestingT
	Helper()
}) *skilltree.Ledger {
	t.Helper()
	tree, err := skilltree.NewTree([]*skilltree.Branch{berserkerBranch()})
	require.NoError(t, err)
	return skilltree.NewLedger(skilltree.State{}, tree)
}

func TestCanInvest_NoPoints(t *testing.T) {
	l := newLedger(t)
	assert.False(t, l.CanInvest("bloodlust", 0))
	assert.True(t, l.CanInvest("bloodlust", 1))
}

func TestCanInvest_UnknownNode(t *testing.T) {
	l := newLedger(t)
	assert.False(t, l.CanInvest("shadowstep", 5))
}

func TestInvestPoint_MaxRank(t *testing.T) {
	l := newLedger(t)
	require.True(t, l.InvestPoint("toughness", 10))
	require.True(t, l.InvestPoint("toughness", 10))
	assert.False(t, l.InvestPoint("toughness", 10), "rank is capped at max_rank")
	assert.Equal(t, 2, l.Rank("toughness"))
}

func TestInvestPoint_PrerequisiteUnmet(t *testing.T) {
	l := newLedger(t)
	// frenzy requires bloodlust >= 1 even with the tier gate satisfiable.
	require.True(t, l.InvestPoint("toughness", 10))
	require.True(t, l.InvestPoint("toughness", 10))
	assert.False(t, l.InvestPoint("frenzy", 10))

	require.True(t, l.InvestPoint("bloodlust", 10))
	assert.True(t, l.InvestPoint("frenzy", 10))
}

func TestInvestPoint_TierGate(t *testing.T) {
	l := newLedger(t)
	require.True(t, l.InvestPoint("bloodlust", 10))
	// Only 1 point in tier 1; tier 2 needs (2-1)*2 = 2.
	assert.False(t, l.InvestPoint("frenzy", 10))

	require.True(t, l.InvestPoint("bloodlust", 10))
	assert.True(t, l.InvestPoint("frenzy", 10))

	// Tier 3 needs 4 points below tier 3; bloodlust 2 + frenzy 1 = 3.
	assert.False(t, l.InvestPoint("rampage", 10))
	require.True(t, l.InvestPoint("frenzy", 10))
	assert.True(t, l.InvestPoint("rampage", 10))
}

func TestPropertyInvest_PrereqsAlwaysEnforced(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := newLedger(t)
		nodes := []string{"bloodlust", "toughness", "frenzy", "rampage"}
		attempts := rapid.IntRange(1, 30).Draw(t, "attempts")
		for i := 0; i < attempts; i++ {
			l.InvestPoint(rapid.SampledFrom(nodes).Draw(t, "node"), 99)
		}
		if l.Rank("frenzy") > 0 {
			assert.GreaterOrEqual(t, l.Rank("bloodlust"), 1)
		}
		if l.Rank("rampage") > 0 {
			assert.GreaterOrEqual(t, l.Rank("frenzy"), 1)
		}
	})
}

func TestNodeEffects_RankIndexed(t *testing.T) {
	l := newLedger(t)
	assert.Nil(t, l.NodeEffectsAtCurrentRank("bloodlust"), "no investment yet")

	require.True(t, l.InvestPoint("bloodlust", 10))
	effects := l.NodeEffectsAtCurrentRank("bloodlust")
	require.Len(t, effects, 1)
	assert.InDelta(t, 2.0, effects[0].Magnitude, 1e-9)

	require.True(t, l.InvestPoint("bloodlust", 10))
	require.True(t, l.InvestPoint("bloodlust", 10))
	effects = l.NodeEffectsAtCurrentRank("bloodlust")
	assert.InDelta(t, 7.0, effects[0].Magnitude, 1e-9)
}

func TestNodeEffects_FixedMagnitude(t *testing.T) {
	l := newLedger(t)
	require.True(t, l.InvestPoint("toughness", 10))
	effects := l.NodeEffectsAtCurrentRank("toughness")
	require.Len(t, effects, 1)
	assert.Equal(t, "defense", effects[0].Stat)
	assert.InDelta(t, 3.0, effects[0].Magnitude, 1e-9)
}

func TestResetBranch_RefundsPoints(t *testing.T) {
	l := newLedger(t)
	require.True(t, l.InvestPoint("bloodlust", 10))
	require.True(t, l.InvestPoint("bloodlust", 10))
	require.True(t, l.InvestPoint("frenzy", 10))

	refunded := l.ResetBranch("berserker")
	assert.Equal(t, 3, refunded)
	assert.Equal(t, 0, l.Rank("bloodlust"))
	assert.Equal(t, 0, l.TotalSpent())
}

func TestResetAll_RefundsEverything(t *testing.T) {
	l := newLedger(t)
	require.True(t, l.InvestPoint("bloodlust", 10))
	require.True(t, l.InvestPoint("toughness", 10))
	assert.Equal(t, 2, l.ResetAll())
	assert.Equal(t, 0, l.TotalSpent())
}

func TestStateRoundTrip(t *testing.T) {
	tree, err := skilltree.NewTree([]*skilltree.Branch{berserkerBranch()})
	require.NoError(t, err)
	l := skilltree.NewLedger(skilltree.State{}, tree)
	require.True(t, l.InvestPoint("bloodlust", 10))
	require.True(t, l.InvestPoint("bloodlust", 10))
	require.True(t, l.InvestPoint("frenzy", 10))

	restored := skilltree.NewLedger(l.GetState(), tree)
	assert.Equal(t, l.GetState(), restored.GetState())
	assert.Equal(t, l.Rank("frenzy"), restored.Rank("frenzy"))
	assert.Equal(t, l.NodeEffectsAtCurrentRank("bloodlust"), restored.NodeEffectsAtCurrentRank("bloodlust"))
}

func TestNewLedger_ClampsCorruptRanks(t *testing.T) {
	tree, err := skilltree.NewTree([]*skilltree.Branch{berserkerBranch()})
	require.NoError(t, err)
	l := skilltree.NewLedger(skilltree.State{
		Ranks:      map[string]int{"toughness": 99, "ghost-node": 4},
		TotalSpent: 2,
	}, tree)
	assert.Equal(t, 2, l.Rank("toughness"))
	assert.Equal(t, 0, l.Rank("ghost-node"))
}

func TestNewTree_RejectsForwardPrerequisite(t *testing.T) {
	_, err := skilltree.NewTree([]*skilltree.Branch{{
		ID: "b", Name: "B",
		Nodes: []skilltree.Node{
			{ID: "late", Name: "Late", Tier: 1, MaxRank: 1, Prerequisites: []string{"early"}},
			{ID: "early", Name: "Early", Tier: 1, MaxRank: 1},
		},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared earlier")
}

func TestLoadTree_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	content := `
id: berserker
class_id: berserker
name: "Berserker"
nodes:
  - id: bloodlust
    name: "Bloodlust"
    tier: 1
    max_rank: 3
    type: passive
    effects:
      - type: stat_bonus
        stat: attack
        per_rank: [2, 4, 7]
  - id: frenzy
    name: "Frenzy"
    tier: 2
    max_rank: 2
    type: active
    prerequisites: [bloodlust]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "berserker.yaml"), []byte(content), 0644))
	tree, err := skilltree.LoadTree(dir)
	require.NoError(t, err)
	n, ok := tree.Node("frenzy")
	require.True(t, ok)
	assert.Equal(t, []string{"bloodlust"}, n.Prerequisites)
	assert.Equal(t, "berserker", tree.BranchOf("frenzy"))
}
