// Package party implements party composition, formation, and morale across a
// bounded roster. The party holds member reference IDs only; the stats,
// inventory, skill, and spell state behind each ID stays with its owner.
package party

// FormationRow places a member at the front or back rank.
type FormationRow string

const (
	RowFront FormationRow = "front"
	RowBack  FormationRow = "back"
)

// Morale bounds and band thresholds.
const (
	MoraleMin = 0
	MoraleMax = 100

	moraleLowMax   = 25
	moraleHighMin  = 75
	moraleElateMin = 90
)

// MoraleModifier is the combat adjustment a member's morale band yields.
type MoraleModifier struct {
	// DamagePercent is a signed percentage applied to outgoing damage.
	DamagePercent int
	// CritBonus is a signed flat adjustment to crit chance.
	CritBonus int
}

// MemberState is the serializable per-member record. CharacterID references
// externally owned character state.
type MemberState struct {
	CharacterID string       `json:"character_id"`
	Name        string       `json:"name"`
	ClassID     string       `json:"class_id"`
	Level       int          `json:"level"`
	Leader      bool         `json:"leader"`
	Morale      int          `json:"morale"`
	Row         FormationRow `json:"row"`
}

// State is the serializable party state.
type State struct {
	Members []MemberState `json:"members,omitempty"`
}

// Party manages up to a configured cap of members with a single leader.
// Not safe for concurrent use.
type Party struct {
	cap     int
	members []MemberState
}

// New constructs a Party from a serializable state. The member list is
// deep-copied and normalized: members beyond the cap are dropped, morale is
// clamped to [0,100], unset rows default to front, and exactly one leader is
// kept (the first flagged, else the first member).
//
// Precondition: sizeCap must be >= 1.
func New(state State, sizeCap int) *Party {
	p := &Party{cap: sizeCap}
	for _, m := range state.Members {
		if len(p.members) == p.cap {
			break
		}
		if m.CharacterID == "" || p.indexOf(m.CharacterID) >= 0 {
			continue
		}
		m.Morale = clampMorale(m.Morale)
		if m.Row != RowBack {
			m.Row = RowFront
		}
		p.members = append(p.members, m)
	}
	p.normalizeLeader()
	return p
}

// GetState returns a deep, independent copy of the party state.
func (p *Party) GetState() State {
	st := State{}
	if len(p.members) > 0 {
		st.Members = make([]MemberState, len(p.members))
		copy(st.Members, p.members)
	}
	return st
}

// Size returns the current member count.
func (p *Party) Size() int {
	return len(p.members)
}

// IsFull reports whether the party is at its size cap.
func (p *Party) IsFull() bool {
	return len(p.members) >= p.cap
}

// Members returns a copy of the member list in join order.
func (p *Party) Members() []MemberState {
	out := make([]MemberState, len(p.members))
	copy(out, p.members)
	return out
}

// Member returns the member record for characterID and whether it exists.
func (p *Party) Member(characterID string) (MemberState, bool) {
	if i := p.indexOf(characterID); i >= 0 {
		return p.members[i], true
	}
	return MemberState{}, false
}

// Leader returns the current leader and whether the party is non-empty.
func (p *Party) Leader() (MemberState, bool) {
	for _, m := range p.members {
		if m.Leader {
			return m, true
		}
	}
	return MemberState{}, false
}

// AddMember adds a member to the roster. The first member added becomes the
// leader. Morale starts at the given value clamped to [0,100]; the row
// defaults to front unless set.
//
// Postcondition: returns false when the party is full or the character ID is
// empty or already present.
func (p *Party) AddMember(m MemberState) bool {
	if p.IsFull() || m.CharacterID == "" || p.indexOf(m.CharacterID) >= 0 {
		return false
	}
	m.Leader = len(p.members) == 0
	m.Morale = clampMorale(m.Morale)
	if m.Row != RowBack {
		m.Row = RowFront
	}
	p.members = append(p.members, m)
	return true
}

// RemoveMember removes the member with characterID.
//
// Postcondition: returns false when the member is unknown, or when it is the
// leader and other members remain (transfer leadership first).
func (p *Party) RemoveMember(characterID string) bool {
	i := p.indexOf(characterID)
	if i < 0 {
		return false
	}
	if p.members[i].Leader && len(p.members) > 1 {
		return false
	}
	p.members = append(p.members[:i], p.members[i+1:]...)
	return true
}

// TransferLeadership moves the leader flag to characterID.
//
// Postcondition: returns false when the member is unknown.
func (p *Party) TransferLeadership(characterID string) bool {
	i := p.indexOf(characterID)
	if i < 0 {
		return false
	}
	for j := range p.members {
		p.members[j].Leader = j == i
	}
	return true
}

// SetRow places the member at the given formation row.
func (p *Party) SetRow(characterID string, row FormationRow) bool {
	i := p.indexOf(characterID)
	if i < 0 || (row != RowFront && row != RowBack) {
		return false
	}
	p.members[i].Row = row
	return true
}

// AutoFormation assigns the front row to members whose class is in
// meleeClassIDs and the back row to everyone else.
func (p *Party) AutoFormation(meleeClassIDs map[string]bool) {
	for i := range p.members {
		if meleeClassIDs[p.members[i].ClassID] {
			p.members[i].Row = RowFront
		} else {
			p.members[i].Row = RowBack
		}
	}
}

// Row returns the members in the given row, in join order.
func (p *Party) Row(row FormationRow) []MemberState {
	var out []MemberState
	for _, m := range p.members {
		if m.Row == row {
			out = append(out, m)
		}
	}
	return out
}

// AdjustMorale shifts the member's morale by delta, clamped to [0,100], and
// returns the new value.
//
// Postcondition: returns -1 when the member is unknown.
func (p *Party) AdjustMorale(characterID string, delta int) int {
	i := p.indexOf(characterID)
	if i < 0 {
		return -1
	}
	p.members[i].Morale = clampMorale(p.members[i].Morale + delta)
	return p.members[i].Morale
}

// MoraleModifierFor returns the combat modifier for the member's morale band:
// morale <= 25 penalizes damage and crit, >= 90 grants the large bonus,
// >= 75 the small one, and anything else is neutral.
func (p *Party) MoraleModifierFor(characterID string) MoraleModifier {
	i := p.indexOf(characterID)
	if i < 0 {
		return MoraleModifier{}
	}
	return moraleModifier(p.members[i].Morale)
}

func moraleModifier(morale int) MoraleModifier {
	switch {
	case morale <= moraleLowMax:
		return MoraleModifier{DamagePercent: -10, CritBonus: -5}
	case morale >= moraleElateMin:
		return MoraleModifier{DamagePercent: 20, CritBonus: 10}
	case morale >= moraleHighMin:
		return MoraleModifier{DamagePercent: 10, CritBonus: 5}
	default:
		return MoraleModifier{}
	}
}

func (p *Party) indexOf(characterID string) int {
	for i, m := range p.members {
		if m.CharacterID == characterID {
			return i
		}
	}
	return -1
}

// normalizeLeader keeps exactly one leader: the first flagged member, or the
// first member when none is flagged. Empty parties have no leader.
func (p *Party) normalizeLeader() {
	if len(p.members) == 0 {
		return
	}
	lead := 0
	for i, m := range p.members {
		if m.Leader {
			lead = i
			break
		}
	}
	for i := range p.members {
		p.members[i].Leader = i == lead
	}
}

func clampMorale(m int) int {
	if m < MoraleMin {
		return MoraleMin
	}
	if m > MoraleMax {
		return MoraleMax
	}
	return m
}
