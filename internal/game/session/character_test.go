package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhollow/emberfall/internal/game/item"
	"github.com/duskhollow/emberfall/internal/game/ruleset"
	"github.com/duskhollow/emberfall/internal/game/session"
	"github.com/duskhollow/emberfall/internal/game/skilltree"
	"github.com/duskhollow/emberfall/internal/game/spellbook"
	"github.com/duskhollow/emberfall/internal/game/stats"
)

func berserkerClass() *ruleset.Class {
	return &ruleset.Class{
		ID:   "berserker",
		Name: "Berserker",
		BaseStats: map[string]int{
			"strength": 14, "intellect": 6, "wisdom": 6,
			"dexterity": 10, "constitution": 12, "charisma": 8,
		},
		HPPerLevel:         8,
		MPPerLevel:         2,
		AllowedWeaponTypes: []string{"axe", "sword"},
		AllowedArmorTypes:  []string{"plate", "leather"},
		Melee:              true,
		SkillBranch:        "berserker",
	}
}

func testBalance() *ruleset.Balance {
	return &ruleset.Balance{
		MaxLevel:            10,
		StatPointsPerLevel:  3,
		SkillPointsPerLevel: 1,
		MaxCritPercent:      75,
		MaxDodgePercent:     50,
		PartySizeCap:        6,
		XPCurve: ruleset.XPCurve{
			Table:    []int64{100, 300, 700},
			BaseXP:   80,
			Exponent: 2.2,
		},
		BerserkerThresholds: []ruleset.BerserkerThreshold{
			{HPPercent: 25, Multiplier: 1.5},
			{HPPercent: 50, Multiplier: 1.25},
		},
	}
}

func testCatalog(t *testing.T) *item.Catalog {
	t.Helper()
	c := item.NewCatalog()
	defs := []*item.ItemDef{
		{
			ID: "iron-axe", Name: "Iron Axe", Type: item.TypeWeapon, Rarity: "common",
			WeaponType: "axe", EquipSlot: item.SlotWeapon,
			Bonuses: item.StatBonuses{Attack: 10},
		},
		{
			ID: "health-potion", Name: "Health Potion", Type: item.TypeConsumable,
			Rarity: "common", Stackable: true, MaxStack: 10,
		},
	}
	for _, d := range defs {
		require.NoError(t, d.Validate())
		require.NoError(t, c.Register(d))
	}
	return c
}

func testTree(t *testing.T) *skilltree.Tree {
	t.Helper()
	tree, err := skilltree.NewTree([]*skilltree.Branch{{
		ID: "berserker", ClassID: "berserker", Name: "Berserker",
		Nodes: []skilltree.Node{{
			ID: "bloodlust", Name: "Bloodlust", Tier: 1, MaxRank: 3, Type: "passive",
			Effects: []skilltree.NodeEffect{
				{Type: "stat_bonus", Stat: "attack", PerRank: []float64{2, 4, 7}},
			},
		}},
	}})
	require.NoError(t, err)
	return tree
}

func testSpells(t *testing.T) *spellbook.Registry {
	t.Helper()
	reg := spellbook.NewRegistry()
	require.NoError(t, reg.Register(&spellbook.SpellDef{
		ID: "war-cry", Name: "War Cry", Element: "physical",
		RequiredLevel: 1, ManaCost: 8, BaseDamage: 12, Cooldown: 4,
	}))
	return reg
}

func testDeps(t *testing.T) session.Deps {
	t.Helper()
	return session.Deps{
		Class:   berserkerClass(),
		Balance: testBalance(),
		Catalog: testCatalog(t),
		Tree:    testTree(t),
		Spells:  testSpells(t),
	}
}

func newCharacter(t *testing.T) *session.Character {
	t.Helper()
	c, err := session.NewCharacterFromClass("char-1", "Aria", testDeps(t))
	require.NoError(t, err)
	return c
}

func TestNewCharacterFromClass(t *testing.T) {
	c := newCharacter(t)
	derived := c.Stats().Derived()
	// CON 12 × 8 + level 1 × 8 = 104.
	assert.Equal(t, 104, derived.MaxHP)
	assert.Equal(t, 104, c.Stats().CurrentHP(), "fresh characters start at full HP")
	assert.Equal(t, derived.MaxMP, c.Stats().CurrentMP())
	assert.Equal(t, 1, c.Leveling().Level())

	// The class passive is registered for the berserker branch.
	st := c.GetState()
	require.Len(t, st.Stats.Modifiers, 1)
	assert.Equal(t, stats.KindBerserkerBlood, st.Stats.Modifiers[0].Kind)
}

func TestNewCharacter_RejectsBadDeps(t *testing.T) {
	deps := testDeps(t)
	deps.Catalog = nil
	_, err := session.NewCharacterFromClass("char-1", "Aria", deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Catalog")

	deps = testDeps(t)
	_, err = session.NewCharacter(session.CharacterState{ID: "c", ClassID: "sorcerer"}, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class")
}

func TestAddXP_LevelUpFlowsIntoStats(t *testing.T) {
	c := newCharacter(t)
	hpBefore := c.Stats().Derived().MaxHP

	results := c.AddXP(100)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].NewLevel)
	assert.Equal(t, 3, results[0].StatPointsGranted)
	assert.Equal(t, 1, results[0].SkillPointsGranted)

	assert.Equal(t, 2, c.Stats().Level(), "stat engine follows the leveling engine")
	assert.Equal(t, hpBefore+8, c.Stats().Derived().MaxHP)
}

func TestAllocateStatPoint(t *testing.T) {
	c := newCharacter(t)
	assert.False(t, c.AllocateStatPoint("strength"), "no points before leveling")

	require.Len(t, c.AddXP(100), 1)
	attackBefore := c.Stats().Derived().Attack

	assert.False(t, c.AllocateStatPoint("luck"), "unknown stat must not debit the pool")
	assert.Equal(t, 3, c.Leveling().UnspentStatPoints())

	require.True(t, c.AllocateStatPoint("strength"))
	require.True(t, c.AllocateStatPoint("strength"))
	assert.Equal(t, 1, c.Leveling().UnspentStatPoints())
	assert.Equal(t, attackBefore+4, c.Stats().Derived().Attack)
}

func TestInvestSkillPoint_GrantsStatBuff(t *testing.T) {
	c := newCharacter(t)
	assert.False(t, c.InvestSkillPoint("bloodlust"), "no skill points yet")

	require.Len(t, c.AddXP(100), 1)
	attackBefore := c.Stats().Derived().Attack

	require.True(t, c.InvestSkillPoint("bloodlust"))
	assert.Equal(t, 0, c.Leveling().UnspentSkillPoints())
	assert.Equal(t, attackBefore+2, c.Stats().Derived().Attack, "rank 1 grants +2 attack")

	require.Len(t, c.AddXP(200), 1)
	require.True(t, c.InvestSkillPoint("bloodlust"))
	assert.Equal(t, attackBefore+4, c.Stats().Derived().Attack, "rank 2 replaces rank 1, not stacks")
}

func TestResetAllSkills_RefundsAndRemovesBuffs(t *testing.T) {
	c := newCharacter(t)
	require.Len(t, c.AddXP(100), 1)
	attackBefore := c.Stats().Derived().Attack
	require.True(t, c.InvestSkillPoint("bloodlust"))

	assert.Equal(t, 1, c.ResetAllSkills())
	assert.Equal(t, 1, c.Leveling().UnspentSkillPoints())
	assert.Equal(t, attackBefore, c.Stats().Derived().Attack)
	assert.Equal(t, 0, c.Skills().Rank("bloodlust"))
}

func TestEquip_PushesBonusesIntoStats(t *testing.T) {
	c := newCharacter(t)
	require.Zero(t, c.AddItem("iron-axe", 1))
	attackBefore := c.Stats().Derived().Attack

	require.True(t, c.Equip(0, item.SlotWeapon))
	assert.Equal(t, attackBefore+10, c.Stats().Derived().Attack)
	assert.Equal(t, "iron-axe", c.Inventory().Equipped(item.SlotWeapon))

	require.True(t, c.Unequip(item.SlotWeapon))
	assert.Equal(t, attackBefore, c.Stats().Derived().Attack)
	assert.Equal(t, 1, c.Inventory().CountItem("iron-axe"))
}

func TestCastSpell_DebitsMana(t *testing.T) {
	c := newCharacter(t)
	require.True(t, c.Spells().Learn("war-cry"))
	mpBefore := c.Stats().CurrentMP()

	result := c.CastSpell("war-cry", 1.0)
	require.True(t, result.Success)
	assert.Equal(t, 8, result.ManaSpent)
	assert.Equal(t, mpBefore-8, c.Stats().CurrentMP())

	assert.Equal(t, spellbook.ReasonOnCooldown, c.CastSpell("war-cry", 1.0).Reason)
	c.UpdateCooldowns(4)
	assert.True(t, c.CastSpell("war-cry", 1.0).Success)
}

func TestCharacterStateRoundTrip(t *testing.T) {
	c := newCharacter(t)
	require.Len(t, c.AddXP(150), 1)
	require.True(t, c.AllocateStatPoint("strength"))
	require.True(t, c.InvestSkillPoint("bloodlust"))
	require.Zero(t, c.AddItem("iron-axe", 1))
	require.Zero(t, c.AddItem("health-potion", 15))
	require.True(t, c.Equip(0, item.SlotWeapon))
	require.True(t, c.Spells().Learn("war-cry"))
	require.True(t, c.CastSpell("war-cry", 1.0).Success)
	c.Stats().AddBuff("defense", 5, 10, "test-elixir")

	restored, err := session.NewCharacter(c.GetState(), testDeps(t))
	require.NoError(t, err)

	assert.Equal(t, c.Stats().Derived(), restored.Stats().Derived())
	assert.Equal(t, c.Stats().CurrentHP(), restored.Stats().CurrentHP())
	assert.Equal(t, c.Stats().CurrentMP(), restored.Stats().CurrentMP())
	assert.Equal(t, c.Leveling().GetState(), restored.Leveling().GetState())
	assert.Equal(t, c.Inventory().GetState(), restored.Inventory().GetState())
	assert.Equal(t, c.Skills().GetState(), restored.Skills().GetState())
	assert.Equal(t, c.Stats().Buffs(), restored.Stats().Buffs())
	assert.InDelta(t, c.Spells().CooldownRemaining("war-cry"), restored.Spells().CooldownRemaining("war-cry"), 1e-9)
}

func TestCharacterRestore_SkillBuffIdentityStable(t *testing.T) {
	c := newCharacter(t)
	require.Len(t, c.AddXP(100), 1)
	require.True(t, c.InvestSkillPoint("bloodlust"))
	c.Stats().AddBuff("defense", 5, 10, "test-elixir")

	restored, err := session.NewCharacter(c.GetState(), testDeps(t))
	require.NoError(t, err)
	assert.Equal(t, c.Stats().Buffs(), restored.Stats().Buffs(),
		"skill buff IDs and ordering survive a restore")

	again, err := session.NewCharacter(restored.GetState(), testDeps(t))
	require.NoError(t, err)
	assert.Equal(t, restored.Stats().Buffs(), again.Stats().Buffs())
}

func TestManager_ActivateDeactivate(t *testing.T) {
	m := session.NewManager()
	c := newCharacter(t)

	require.NoError(t, m.Activate(c))
	assert.Error(t, m.Activate(c), "double activation rejected")
	assert.Equal(t, 1, m.ActiveCount())

	got, ok := m.Character("char-1")
	require.True(t, ok)
	assert.Same(t, c, got)

	require.NoError(t, m.Deactivate("char-1"))
	assert.Error(t, m.Deactivate("char-1"))
	assert.Equal(t, 0, m.ActiveCount())
}

func TestManager_PartyMembership(t *testing.T) {
	m := session.NewManager()
	a := newCharacter(t)
	b, err := session.NewCharacterFromClass("char-2", "Bram", testDeps(t))
	require.NoError(t, err)
	require.NoError(t, m.Activate(a))
	require.NoError(t, m.Activate(b))

	_, err = m.JoinParty("ghost", "p1")
	assert.Error(t, err)

	prev, err := m.JoinParty("char-1", "p1")
	require.NoError(t, err)
	assert.Empty(t, prev)
	_, err = m.JoinParty("char-2", "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"char-1", "char-2"}, m.CharactersInParty("p1"))

	prev, err = m.JoinParty("char-2", "p2")
	require.NoError(t, err)
	assert.Equal(t, "p1", prev)
	assert.Equal(t, "p2", m.PartyOf("char-2"))

	require.NoError(t, m.Deactivate("char-1"))
	assert.Empty(t, m.CharactersInParty("p1"), "deactivation cleans up membership")
}
