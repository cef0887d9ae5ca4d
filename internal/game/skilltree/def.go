// Package skilltree implements the static skill-tree definitions and the
// per-character investment ledger over them.
package skilltree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeEffect describes one effect a node grants. Magnitude is either fixed or
// rank-indexed through PerRank; when PerRank is set it wins and the entry at
// min(rank-1, len-1) applies.
type NodeEffect struct {
	// Type tags the effect for the combat layer ("stat_bonus", "passive", ...).
	Type string `yaml:"type"`
	// Stat names the affected stat for stat_bonus effects.
	Stat      string    `yaml:"stat,omitempty"`
	Magnitude float64   `yaml:"magnitude,omitempty"`
	PerRank   []float64 `yaml:"per_rank,omitempty"`
}

// Node is one investable skill-tree node.
type Node struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Tier gates investment: a node requires (tier-1)*2 points already
	// committed to strictly lower tiers of the same branch.
	Tier    int `yaml:"tier"`
	MaxRank int `yaml:"max_rank"`
	// Prerequisites lists node IDs that must each hold rank >= 1 first.
	Prerequisites []string `yaml:"prerequisites,omitempty"`
	// Type classifies the node ("passive", "active", "keystone").
	Type    string       `yaml:"type"`
	Effects []NodeEffect `yaml:"effects,omitempty"`
}

// Branch is one class specialization's set of nodes.
type Branch struct {
	ID      string `yaml:"id"`
	ClassID string `yaml:"class_id"`
	Name    string `yaml:"name"`
	Nodes   []Node `yaml:"nodes"`
}

// Tree indexes all branches and nodes for lookup. Immutable after
// construction and safe for concurrent reads.
type Tree struct {
	branches   map[string]*Branch
	nodes      map[string]*Node
	nodeBranch map[string]string
}

// NewTree builds a Tree from branches, validating node uniqueness, tier and
// rank bounds, and that every prerequisite references an earlier-declared
// node in the same branch.
//
// Postcondition: Returns a non-nil Tree or a non-nil error.
func NewTree(branches []*Branch) (*Tree, error) {
	t := &Tree{
		branches:   make(map[string]*Branch),
		nodes:      make(map[string]*Node),
		nodeBranch: make(map[string]string),
	}
	for _, b := range branches {
		if b.ID == "" {
			return nil, fmt.Errorf("skilltree: branch ID must not be empty")
		}
		if _, exists := t.branches[b.ID]; exists {
			return nil, fmt.Errorf("skilltree: duplicate branch ID %q", b.ID)
		}
		t.branches[b.ID] = b
		seen := make(map[string]bool, len(b.Nodes))
		for i := range b.Nodes {
			n := &b.Nodes[i]
			if n.ID == "" {
				return nil, fmt.Errorf("skilltree: branch %q: node ID must not be empty", b.ID)
			}
			if _, exists := t.nodes[n.ID]; exists {
				return nil, fmt.Errorf("skilltree: duplicate node ID %q", n.ID)
			}
			if n.Tier < 1 {
				return nil, fmt.Errorf("skilltree: node %q: tier must be >= 1, got %d", n.ID, n.Tier)
			}
			if n.MaxRank < 1 {
				return nil, fmt.Errorf("skilltree: node %q: max_rank must be >= 1, got %d", n.ID, n.MaxRank)
			}
			for _, prereq := range n.Prerequisites {
				if !seen[prereq] {
					return nil, fmt.Errorf("skilltree: node %q: prerequisite %q not declared earlier in branch %q", n.ID, prereq, b.ID)
				}
			}
			t.nodes[n.ID] = n
			t.nodeBranch[n.ID] = b.ID
			seen[n.ID] = true
		}
	}
	return t, nil
}

// LoadTree reads every .yaml file in dir as a Branch and assembles a Tree.
//
// Precondition: dir must be a readable directory.
func LoadTree(dir string) (*Tree, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("skilltree: reading directory %q: %w", dir, err)
	}
	var branches []*Branch
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("skilltree: reading %q: %w", path, err)
		}
		var b Branch
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("skilltree: parsing %q: %w", path, err)
		}
		branches = append(branches, &b)
	}
	return NewTree(branches)
}

// Node returns the node definition for id and whether it exists.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Branch returns the branch definition for id and whether it exists.
func (t *Tree) Branch(id string) (*Branch, bool) {
	b, ok := t.branches[id]
	return b, ok
}

// BranchOf returns the branch ID containing the given node, or "".
func (t *Tree) BranchOf(nodeID string) string {
	return t.nodeBranch[nodeID]
}
