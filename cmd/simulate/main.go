// Package main provides a deterministic progression simulator for balance
// review: it builds a character from loaded game data, feeds it experience
// level by level, and prints the derived combat stats at each step.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/duskhollow/emberfall/internal/config"
	"github.com/duskhollow/emberfall/internal/game/item"
	"github.com/duskhollow/emberfall/internal/game/loot"
	"github.com/duskhollow/emberfall/internal/game/rng"
	"github.com/duskhollow/emberfall/internal/game/ruleset"
	"github.com/duskhollow/emberfall/internal/game/session"
	"github.com/duskhollow/emberfall/internal/game/skilltree"
	"github.com/duskhollow/emberfall/internal/game/spellbook"
	"github.com/duskhollow/emberfall/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	classID := flag.String("class", "", "class ID to simulate")
	targetLevel := flag.Int("level", 10, "level to simulate up to")
	lootTableID := flag.String("loot-table", "", "optional loot table to sample at each level")
	seed := flag.Uint64("seed", 1, "random seed for loot sampling")
	flag.Parse()

	if *classID == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate -class <id> [-level <n>] [-loot-table <id>] [-seed <n>]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	balance, err := ruleset.LoadBalance(cfg.Data.Resolve(cfg.Data.Balance))
	if err != nil {
		logger.Fatal("loading balance", zap.Error(err))
	}
	classes, err := ruleset.LoadClasses(cfg.Data.Resolve(cfg.Data.Classes))
	if err != nil {
		logger.Fatal("loading classes", zap.Error(err))
	}
	index, err := ruleset.ClassIndex(classes)
	if err != nil {
		logger.Fatal("indexing classes", zap.Error(err))
	}
	class, ok := index[*classID]
	if !ok {
		logger.Fatal("unknown class", zap.String("class", *classID))
	}
	catalog, err := item.LoadCatalog(cfg.Data.Resolve(cfg.Data.Items))
	if err != nil {
		logger.Fatal("loading items", zap.Error(err))
	}
	tree, err := skilltree.LoadTree(cfg.Data.Resolve(cfg.Data.SkillTrees))
	if err != nil {
		logger.Fatal("loading skill trees", zap.Error(err))
	}
	spells, err := spellbook.LoadRegistry(cfg.Data.Resolve(cfg.Data.Spells))
	if err != nil {
		logger.Fatal("loading spells", zap.Error(err))
	}

	var roller *loot.Roller
	var table *loot.Table
	if *lootTableID != "" {
		tables, err := loot.LoadRegistry(cfg.Data.Resolve(cfg.Data.LootTables))
		if err != nil {
			logger.Fatal("loading loot tables", zap.Error(err))
		}
		table, ok = tables.Table(*lootTableID)
		if !ok {
			logger.Fatal("unknown loot table", zap.String("table", *lootTableID))
		}
		roller = loot.NewRoller(rng.NewSeededSource(*seed))
	}

	deps := session.Deps{
		Class:   class,
		Balance: balance,
		Catalog: catalog,
		Tree:    tree,
		Spells:  spells,
	}
	c, err := session.NewCharacterFromClass("sim", "Simulacrum", deps)
	if err != nil {
		logger.Fatal("building character", zap.Error(err))
	}

	if *targetLevel > balance.MaxLevel {
		*targetLevel = balance.MaxLevel
	}

	printDerived(c)
	for c.Leveling().Level() < *targetLevel {
		needed := int64(c.Leveling().XPToNextLevel())
		results := c.AddXP(needed)
		if len(results) == 0 {
			break
		}
		// Dump every point into the class's strongest concerns: stat points
		// into strength, skill points into the first investable node.
		for c.Leveling().UnspentStatPoints() > 0 {
			if !c.AllocateStatPoint("strength") {
				break
			}
		}
		investAny(c, tree)

		printDerived(c)
		if roller != nil {
			result := roller.Roll(table, 0)
			fmt.Printf("  loot sample: gold=%d drops=%d\n", result.Gold, len(result.Drops))
		}
	}

	fmt.Printf("simulated %s to level %d [%s]\n", class.Name, c.Leveling().Level(), time.Since(start).Round(time.Millisecond))
}

// investAny spends available skill points on the first node that accepts
// them, walking the class branch in declaration order.
func investAny(c *session.Character, tree *skilltree.Tree) {
	branch, ok := tree.Branch(c.Class().SkillBranch)
	if !ok {
		return
	}
	for c.Leveling().UnspentSkillPoints() > 0 {
		invested := false
		for _, n := range branch.Nodes {
			if c.InvestSkillPoint(n.ID) {
				invested = true
				break
			}
		}
		if !invested {
			return
		}
	}
}

func printDerived(c *session.Character) {
	d := c.Stats().Derived()
	fmt.Printf("level %2d: hp=%d mp=%d atk=%d def=%d spd=%.1f crit=%.1f dodge=%.1f matk=%d mdef=%d\n",
		c.Leveling().Level(), d.MaxHP, d.MaxMP, d.Attack, d.Defense,
		d.Speed, d.Crit, d.Dodge, d.MagicAttack, d.MagicDefense)
}
