package skilltree

// State is the serializable per-character investment state.
type State struct {
	// Ranks maps node IDs to invested rank; absent = rank 0.
	Ranks map[string]int `json:"ranks,omitempty"`
	// TotalSpent is the running count of points invested across all branches.
	TotalSpent int `json:"total_spent"`
}

// ResolvedEffect is a node effect with its magnitude resolved for the node's
// current rank.
type ResolvedEffect struct {
	Type      string
	Stat      string
	Magnitude float64
}

// Ledger tracks one character's investments over a shared immutable Tree.
// Not safe for concurrent use.
type Ledger struct {
	tree       *Tree
	ranks      map[string]int
	totalSpent int
}

// NewLedger constructs a Ledger from a serializable state and the static
// tree. The incoming rank map is deep-copied; ranks for unknown nodes are
// dropped and ranks above a node's maximum are clamped.
func NewLedger(state State, tree *Tree) *Ledger {
	l := &Ledger{
		tree:       tree,
		ranks:      make(map[string]int),
		totalSpent: state.TotalSpent,
	}
	for id, rank := range state.Ranks {
		n, ok := tree.Node(id)
		if !ok || rank <= 0 {
			continue
		}
		if rank > n.MaxRank {
			rank = n.MaxRank
		}
		l.ranks[id] = rank
	}
	return l
}

// GetState returns a deep, independent copy of the investment state.
func (l *Ledger) GetState() State {
	st := State{TotalSpent: l.totalSpent}
	if len(l.ranks) > 0 {
		st.Ranks = make(map[string]int, len(l.ranks))
		for id, rank := range l.ranks {
			st.Ranks[id] = rank
		}
	}
	return st
}

// Rank returns the invested rank for nodeID, 0 if uninvested or unknown.
func (l *Ledger) Rank(nodeID string) int {
	return l.ranks[nodeID]
}

// TotalSpent returns the total points invested across all branches.
func (l *Ledger) TotalSpent() int {
	return l.totalSpent
}

// BranchSpent returns the points invested in the given branch.
func (l *Ledger) BranchSpent(branchID string) int {
	total := 0
	for id, rank := range l.ranks {
		if l.tree.BranchOf(id) == branchID {
			total += rank
		}
	}
	return total
}

// lowerTierSpent returns the points invested in nodes of the branch with
// tier strictly below the given tier.
func (l *Ledger) lowerTierSpent(branchID string, tier int) int {
	total := 0
	for id, rank := range l.ranks {
		if l.tree.BranchOf(id) != branchID {
			continue
		}
		if n, ok := l.tree.Node(id); ok && n.Tier < tier {
			total += rank
		}
	}
	return total
}

// CanInvest reports whether a point can go into nodeID given the available
// budget: the node must exist, points must be available, the rank must be
// below maximum, every prerequisite must hold rank >= 1, and the branch must
// carry at least (tier-1)*2 points in strictly lower tiers.
func (l *Ledger) CanInvest(nodeID string, availablePoints int) bool {
	n, ok := l.tree.Node(nodeID)
	if !ok || availablePoints <= 0 {
		return false
	}
	if l.ranks[nodeID] >= n.MaxRank {
		return false
	}
	for _, prereq := range n.Prerequisites {
		if l.ranks[prereq] < 1 {
			return false
		}
	}
	branchID := l.tree.BranchOf(nodeID)
	if l.lowerTierSpent(branchID, n.Tier) < (n.Tier-1)*2 {
		return false
	}
	return true
}

// InvestPoint applies CanInvest and, on success, increments the node's rank
// and the running totals. The caller is responsible for debiting the
// leveling engine's unspent counter.
//
// Postcondition: returns false and leaves state unchanged when CanInvest
// fails.
func (l *Ledger) InvestPoint(nodeID string, availablePoints int) bool {
	if !l.CanInvest(nodeID, availablePoints) {
		return false
	}
	l.ranks[nodeID]++
	l.totalSpent++
	return true
}

// NodeEffectsAtCurrentRank resolves the node's effects for its invested
// rank. Rank-indexed magnitudes select the entry at min(rank-1, len-1).
//
// Postcondition: returns nil when the node is unknown or uninvested.
func (l *Ledger) NodeEffectsAtCurrentRank(nodeID string) []ResolvedEffect {
	n, ok := l.tree.Node(nodeID)
	if !ok {
		return nil
	}
	rank := l.ranks[nodeID]
	if rank == 0 {
		return nil
	}
	out := make([]ResolvedEffect, 0, len(n.Effects))
	for _, eff := range n.Effects {
		magnitude := eff.Magnitude
		if len(eff.PerRank) > 0 {
			idx := rank - 1
			if idx > len(eff.PerRank)-1 {
				idx = len(eff.PerRank) - 1
			}
			magnitude = eff.PerRank[idx]
		}
		out = append(out, ResolvedEffect{Type: eff.Type, Stat: eff.Stat, Magnitude: magnitude})
	}
	return out
}

// ResetBranch refunds every point invested in the given branch and returns
// the refunded count for the caller to re-credit.
func (l *Ledger) ResetBranch(branchID string) int {
	refunded := 0
	for id, rank := range l.ranks {
		if l.tree.BranchOf(id) == branchID {
			refunded += rank
			delete(l.ranks, id)
		}
	}
	l.totalSpent -= refunded
	return refunded
}

// ResetAll refunds every invested point and returns the refunded count.
func (l *Ledger) ResetAll() int {
	refunded := l.totalSpent
	l.ranks = make(map[string]int)
	l.totalSpent = 0
	return refunded
}
