// Package main provides the static game-data validator: it loads every
// definition directory the engine consumes and reports all violations,
// including cross-references between catalogs.
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
	"github.com/duskhollow/emberfall/internal/game/ruleset"
	"github.com/duskhollow/emberfall/internal/game/skilltree"
	"github.com/duskhollow/emberfall/internal/game/spellbook"
	"github.com/duskhollow/emberfall/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var violations []string
	fail := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	balance, err := ruleset.LoadBalance(cfg.Data.Resolve(cfg.Data.Balance))
	if err != nil {
		fail("balance: %v", err)
	} else {
		logger.Info("balance loaded",
			zap.Int("max_level", balance.MaxLevel),
			zap.Int("party_size_cap", balance.PartySizeCap))
	}

	classes, err := ruleset.LoadClasses(cfg.Data.Resolve(cfg.Data.Classes))
	if err != nil {
		fail("classes: %v", err)
	} else {
		logger.Info("classes loaded", zap.Int("count", len(classes)))
	}

	catalog, err := item.LoadCatalog(cfg.Data.Resolve(cfg.Data.Items))
	if err != nil {
		fail("items: %v", err)
	} else {
		logger.Info("items loaded", zap.Int("count", catalog.Len()))
	}

	tree, err := skilltree.LoadTree(cfg.Data.Resolve(cfg.Data.SkillTrees))
	if err != nil {
		fail("skill trees: %v", err)
	} else {
		logger.Info("skill trees loaded")
	}

	spells, err := spellbook.LoadRegistry(cfg.Data.Resolve(cfg.Data.Spells))
	if err != nil {
		fail("spells: %v", err)
	} else {
		logger.Info("spells loaded", zap.Int("count", len(spells.All())))
	}

	lootTables, err := loot.LoadRegistry(cfg.Data.Resolve(cfg.Data.LootTables))
	if err != nil {
		fail("loot tables: %v", err)
	} else {
		logger.Info("loot tables loaded", zap.Int("count", lootTables.Len()))
	}

	// Cross-reference checks only make sense once both sides loaded.
	if classes != nil && tree != nil {
		for _, c := range classes {
			if c.SkillBranch == "" {
				continue
			}
			if _, ok := tree.Branch(c.SkillBranch); !ok {
				fail("class %q references unknown skill branch %q", c.ID, c.SkillBranch)
			}
		}
	}
	if lootTables != nil && catalog != nil {
		for _, table := range lootTables.All() {
			for _, e := range table.Entries {
				if !catalog.Exists(e.ItemID) {
					fail("loot table %q references unknown item %q", table.ID, e.ItemID)
				}
			}
		}
	}
	if classes != nil && catalog != nil {
		for _, def := range catalog.All() {
			if def.ClassRestriction == "" {
				continue
			}
			if findClass(classes, def.ClassRestriction) == nil {
				fail("item %q restricted to unknown class %q", def.ID, def.ClassRestriction)
			}
		}
	}

	if len(violations) > 0 {
		for _, v := range violations {
			logger.Error("validation failure", zap.String("violation", v))
		}
		fmt.Fprintf(os.Stderr, "%d violation(s) found [%s]\n", len(violations), time.Since(start).Round(time.Millisecond))
		os.Exit(1)
	}
	fmt.Printf("all game data valid [%s]\n", time.Since(start).Round(time.Millisecond))
}

func findClass(classes []*ruleset.Class, id string) *ruleset.Class {
	for _, c := range classes {
		if c.ID == id {
			return c
		}
	}
	return nil
}
