// Package session owns the per-character composition: it wires the stat,
// leveling, inventory, skill-tree, and spell-book engines for one character,
// routes level-up grants and equipment changes between them, and produces the
// aggregate snapshot the save layer persists.
package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/duskhollow/emberfall/internal/game/inventory"
	"github.com/duskhollow/emberfall/internal/game/item"
	"github.com/duskhollow/emberfall/internal/game/leveling"
	"github.com/duskhollow/emberfall/internal/game/ruleset"
	"github.com/duskhollow/emberfall/internal/game/skilltree"
	"github.com/duskhollow/emberfall/internal/game/spellbook"
	"github.com/duskhollow/emberfall/internal/game/stats"
)

// skillBuffSource prefixes buff sources owned by the skill tree so they can
// be rebuilt wholesale after any investment change.
const skillBuffSource = "skill:"

// berserkerModifierID identifies the class passive registered at creation.
const berserkerModifierID = "berserker-blood"

// CharacterState is the aggregate serializable snapshot of one character.
// Every component state inside it is a deep copy.
type CharacterState struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ClassID   string          `json:"class_id"`
	Stats     stats.State     `json:"stats"`
	Leveling  leveling.State  `json:"leveling"`
	Inventory inventory.State `json:"inventory"`
	SkillTree skilltree.State `json:"skill_tree"`
	SpellBook spellbook.State `json:"spell_book"`
}

// Deps bundles the static lookup tables a Character needs. All fields are
// required; construction fails loudly on a nil dependency because that is a
// host integration bug, not a gameplay event.
type Deps struct {
	Class   *ruleset.Class
	Balance *ruleset.Balance
	Catalog *item.Catalog
	Tree    *skilltree.Tree
	Spells  *spellbook.Registry
}

func (d Deps) validate() error {
	switch {
	case d.Class == nil:
		return fmt.Errorf("session: Deps.Class must not be nil")
	case d.Balance == nil:
		return fmt.Errorf("session: Deps.Balance must not be nil")
	case d.Catalog == nil:
		return fmt.Errorf("session: Deps.Catalog must not be nil")
	case d.Tree == nil:
		return fmt.Errorf("session: Deps.Tree must not be nil")
	case d.Spells == nil:
		return fmt.Errorf("session: Deps.Spells must not be nil")
	}
	return nil
}

// Character composes the per-character engines and owns all cross-component
// flows. Not safe for concurrent use; confine each instance to a single
// owning goroutine.
type Character struct {
	id     string
	name   string
	deps   Deps
	stats  *stats.Engine
	levels *leveling.Engine
	inv    *inventory.Inventory
	skills *skilltree.Ledger
	book   *spellbook.Book
}

// NewCharacter restores a Character from an aggregate snapshot.
//
// Precondition: every Deps field must be non-nil and state.ClassID must match
// deps.Class.ID.
func NewCharacter(state CharacterState, deps Deps) (*Character, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if state.ID == "" {
		return nil, fmt.Errorf("session: character ID must not be empty")
	}
	if state.ClassID != deps.Class.ID {
		return nil, fmt.Errorf("session: character %q has class %q but deps carry %q", state.ID, state.ClassID, deps.Class.ID)
	}
	c := &Character{
		id:   state.ID,
		name: state.Name,
		deps: deps,
		stats: stats.NewEngine(state.Stats, stats.Caps{
			MaxCrit:  deps.Balance.MaxCritPercent,
			MaxDodge: deps.Balance.MaxDodgePercent,
		}),
		levels: leveling.NewEngine(state.Leveling, deps.Balance),
		inv:    inventory.New(state.Inventory, inventory.DefaultCapacity),
		skills: skilltree.NewLedger(state.SkillTree, deps.Tree),
		book:   spellbook.NewBook(state.SpellBook, deps.Spells),
	}
	// Equipment and skill bonuses are derived, not trusted from the snapshot.
	c.syncEquipment()
	c.syncSkillBuffs()
	return c, nil
}

// NewCharacterFromClass creates a fresh level-1 character: base stats from
// the class, full HP/MP, an empty bag, and the class passive registered when
// the class carries the berserker branch.
func NewCharacterFromClass(id, name string, deps Deps) (*Character, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	st := CharacterState{
		ID:      id,
		Name:    name,
		ClassID: deps.Class.ID,
		Stats: stats.State{
			CharacterID: id,
			Base:        primaryFromMap(deps.Class.BaseStats),
			Level:       1,
			HPPerLevel:  deps.Class.HPPerLevel,
			MPPerLevel:  deps.Class.MPPerLevel,
		},
		Leveling: leveling.State{Level: 1},
	}
	if deps.Class.SkillBranch == "berserker" {
		st.Stats.Modifiers = []stats.Modifier{
			stats.NewBerserkerBlood(berserkerModifierID, deps.Balance.BerserkerThresholds),
		}
	}
	c, err := NewCharacter(st, deps)
	if err != nil {
		return nil, err
	}
	derived := c.stats.Derived()
	c.stats.SetCurrentHP(derived.MaxHP)
	c.stats.SetCurrentMP(derived.MaxMP)
	return c, nil
}

// GetState returns the aggregate snapshot, deep-copied throughout.
func (c *Character) GetState() CharacterState {
	return CharacterState{
		ID:        c.id,
		Name:      c.name,
		ClassID:   c.deps.Class.ID,
		Stats:     c.stats.GetState(),
		Leveling:  c.levels.GetState(),
		Inventory: c.inv.GetState(),
		SkillTree: c.skills.GetState(),
		SpellBook: c.book.GetState(),
	}
}

// ID returns the character's identifier.
func (c *Character) ID() string { return c.id }

// Name returns the character's display name.
func (c *Character) Name() string { return c.name }

// Class returns the character's static class definition.
func (c *Character) Class() *ruleset.Class { return c.deps.Class }

// Stats exposes the stat engine for reads and buff/modifier mutation.
func (c *Character) Stats() *stats.Engine { return c.stats }

// Leveling exposes the leveling engine for reads.
func (c *Character) Leveling() *leveling.Engine { return c.levels }

// Inventory exposes the inventory for reads and bag mutation.
func (c *Character) Inventory() *inventory.Inventory { return c.inv }

// Skills exposes the skill-tree ledger for reads.
func (c *Character) Skills() *skilltree.Ledger { return c.skills }

// Spells exposes the spell book for reads and Learn/Forget.
func (c *Character) Spells() *spellbook.Book { return c.book }

// AddXP credits experience, applies any resulting level-ups to the stat
// engine, and returns the per-level results in order.
func (c *Character) AddXP(amount int64) []leveling.LevelUpResult {
	results := c.levels.AddXP(amount, c.deps.Class.HPPerLevel, c.deps.Class.MPPerLevel)
	if len(results) > 0 {
		c.stats.SetLevel(c.levels.Level())
	}
	return results
}

// AllocateStatPoint spends one unspent stat point on the named primary stat.
//
// Postcondition: returns false when the stat is unknown or no points remain;
// the point counter and the stat block change together or not at all.
func (c *Character) AllocateStatPoint(stat string) bool {
	if !stats.IsPrimaryStat(stat) {
		return false
	}
	if !c.levels.SpendStatPoint() {
		return false
	}
	return c.stats.AllocatePoint(stat)
}

// InvestSkillPoint spends one unspent skill point on the named node and
// rebuilds the skill-granted stat buffs.
//
// Postcondition: returns false when the investment is rejected (unknown node,
// maxed rank, unmet prerequisite or tier gate, no points); state is unchanged
// on failure.
func (c *Character) InvestSkillPoint(nodeID string) bool {
	if !c.skills.InvestPoint(nodeID, c.levels.UnspentSkillPoints()) {
		return false
	}
	c.levels.SpendSkillPoint()
	c.syncSkillBuffs()
	return true
}

// ResetSkillBranch refunds every point in the branch back to the unspent
// pool and returns the refunded count.
func (c *Character) ResetSkillBranch(branchID string) int {
	refunded := c.skills.ResetBranch(branchID)
	if refunded > 0 {
		c.levels.RefundSkillPoints(refunded)
		c.syncSkillBuffs()
	}
	return refunded
}

// ResetAllSkills refunds every invested point and returns the refunded count.
func (c *Character) ResetAllSkills() int {
	refunded := c.skills.ResetAll()
	if refunded > 0 {
		c.levels.RefundSkillPoints(refunded)
		c.syncSkillBuffs()
	}
	return refunded
}

// AddItem adds qty of the item to the bag and returns the overflow that did
// not fit.
func (c *Character) AddItem(itemID string, qty int) int {
	return c.inv.AddItem(itemID, qty, c.deps.Catalog)
}

// RemoveItem removes up to qty of the item and returns the removed count.
func (c *Character) RemoveItem(itemID string, qty int) int {
	return c.inv.RemoveItem(itemID, qty)
}

// Equip equips the item at bagIndex into the target slot and pushes the new
// equipment totals into the stat engine.
func (c *Character) Equip(bagIndex int, target item.EquipSlot) bool {
	if !c.inv.Equip(bagIndex, target, c.equipProfile(), c.deps.Catalog) {
		return false
	}
	c.syncEquipment()
	return true
}

// Unequip returns the slot's item to the bag and pushes the new equipment
// totals into the stat engine.
func (c *Character) Unequip(slot item.EquipSlot) bool {
	if !c.inv.Unequip(slot, c.deps.Catalog) {
		return false
	}
	c.syncEquipment()
	return true
}

// CastSpell attempts the spell with the character's current casting stats and
// debits the mana cost on success.
func (c *Character) CastSpell(spellID string, elementalModifier float64) spellbook.CastResult {
	derived := c.stats.Derived()
	primary := c.stats.EffectivePrimary()
	caster := spellbook.Caster{
		Level:       c.levels.Level(),
		Mana:        c.stats.CurrentMP(),
		MagicAttack: derived.MagicAttack,
		Attributes: map[string]int{
			stats.StatStrength:     primary.Strength,
			stats.StatIntellect:    primary.Intellect,
			stats.StatWisdom:       primary.Wisdom,
			stats.StatDexterity:    primary.Dexterity,
			stats.StatConstitution: primary.Constitution,
			stats.StatCharisma:     primary.Charisma,
		},
	}
	result := c.book.Cast(spellID, caster, elementalModifier)
	if result.Success {
		c.stats.SetCurrentMP(c.stats.CurrentMP() - result.ManaSpent)
	}
	return result
}

// UpdateBuffTimers advances buff durations by elapsed ticks and returns the
// IDs of expired buffs.
func (c *Character) UpdateBuffTimers(elapsed int) []string {
	return c.stats.TickBuffs(elapsed)
}

// UpdateCooldowns advances spell cooldowns by elapsed seconds.
func (c *Character) UpdateCooldowns(elapsed float64) {
	c.book.UpdateCooldowns(elapsed)
}

// equipProfile snapshots the class and level facts the inventory needs to
// validate an equip.
func (c *Character) equipProfile() inventory.EquipProfile {
	return inventory.EquipProfile{
		ClassID:            c.deps.Class.ID,
		Level:              c.levels.Level(),
		AllowedWeaponTypes: c.deps.Class.AllowedWeaponTypes,
		AllowedArmorTypes:  c.deps.Class.AllowedArmorTypes,
	}
}

// syncEquipment pushes the current equipped-item totals into the stat engine.
func (c *Character) syncEquipment() {
	bonuses := c.inv.EquipmentBonuses(c.deps.Catalog)
	c.stats.SetEquipment(stats.EquipmentSnapshot{
		Attack:  bonuses.Attack,
		Defense: bonuses.Defense,
		Speed:   bonuses.Speed,
		Crit:    bonuses.Crit,
		Primary: bonuses.Primary,
	})
}

// syncSkillBuffs reconciles the permanent buffs granted by invested skill
// nodes. Buff IDs derive from the node ID and effect index, and buffs already
// present are updated in place, so the buff list is identical across a
// save/load round-trip.
func (c *Character) syncSkillBuffs() {
	ranks := c.skills.GetState().Ranks
	nodeIDs := make([]string, 0, len(ranks))
	for nodeID := range ranks {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Strings(nodeIDs)

	desired := make(map[string]bool)
	for _, nodeID := range nodeIDs {
		for i, eff := range c.skills.NodeEffectsAtCurrentRank(nodeID) {
			if eff.Type != "stat_bonus" {
				continue
			}
			id := fmt.Sprintf("%s%s#%d", skillBuffSource, nodeID, i)
			desired[id] = true
			c.stats.AddNamedBuff(id, eff.Stat, eff.Magnitude, stats.PermanentDuration, skillBuffSource+nodeID)
		}
	}
	for _, b := range c.stats.Buffs() {
		if strings.HasPrefix(b.Source, skillBuffSource) && !desired[b.ID] {
			c.stats.RemoveBuff(b.ID)
		}
	}
}

// primaryFromMap builds a primary block from a class base-stat map.
func primaryFromMap(m map[string]int) stats.PrimaryBlock {
	return stats.PrimaryBlock{
		Strength:     m[stats.StatStrength],
		Intellect:    m[stats.StatIntellect],
		Wisdom:       m[stats.StatWisdom],
		Dexterity:    m[stats.StatDexterity],
		Constitution: m[stats.StatConstitution],
		Charisma:     m[stats.StatCharisma],
	}
}
