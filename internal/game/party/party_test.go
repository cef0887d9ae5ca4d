package party_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/duskhollow/emberfall/internal/game/party"
)

func member(id, classID string) party.MemberState {
	return party.MemberState{CharacterID: id, Name: id, ClassID: classID, Level: 1, Morale: 50}
}

func TestAddMember_FirstBecomesLeader(t *testing.T) {
	p := party.New(party.State{}, 6)
	require.True(t, p.AddMember(member("aria", "berserker")))
	require.True(t, p.AddMember(member("bram", "cleric")))

	lead, ok := p.Leader()
	require.True(t, ok)
	assert.Equal(t, "aria", lead.CharacterID)

	m, ok := p.Member("bram")
	require.True(t, ok)
	assert.False(t, m.Leader)
}

func TestAddMember_Rejections(t *testing.T) {
	p := party.New(party.State{}, 2)
	require.True(t, p.AddMember(member("aria", "berserker")))
	assert.False(t, p.AddMember(member("aria", "berserker")), "duplicate id")
	assert.False(t, p.AddMember(party.MemberState{}), "empty id")

	require.True(t, p.AddMember(member("bram", "cleric")))
	assert.True(t, p.IsFull())
	assert.False(t, p.AddMember(member("cole", "ranger")), "party full")
	assert.Equal(t, 2, p.Size())
}

func TestRemoveMember_LeaderBlockedWhileOthersRemain(t *testing.T) {
	p := party.New(party.State{}, 6)
	require.True(t, p.AddMember(member("aria", "berserker")))
	require.True(t, p.AddMember(member("bram", "cleric")))

	assert.False(t, p.RemoveMember("aria"), "leader must transfer first")
	require.True(t, p.TransferLeadership("bram"))
	assert.True(t, p.RemoveMember("aria"))

	lead, ok := p.Leader()
	require.True(t, ok)
	assert.Equal(t, "bram", lead.CharacterID)

	// A sole leader may leave.
	assert.True(t, p.RemoveMember("bram"))
	assert.Equal(t, 0, p.Size())
	_, ok = p.Leader()
	assert.False(t, ok)
}

func TestTransferLeadership_UnknownMember(t *testing.T) {
	p := party.New(party.State{}, 6)
	require.True(t, p.AddMember(member("aria", "berserker")))
	assert.False(t, p.TransferLeadership("nobody"))
	lead, _ := p.Leader()
	assert.Equal(t, "aria", lead.CharacterID)
}

func TestAutoFormation(t *testing.T) {
	p := party.New(party.State{}, 6)
	require.True(t, p.AddMember(member("aria", "berserker")))
	require.True(t, p.AddMember(member("bram", "cleric")))
	require.True(t, p.AddMember(member("cole", "knight")))
	require.True(t, p.AddMember(member("dara", "sorcerer")))

	p.AutoFormation(map[string]bool{"berserker": true, "knight": true})

	front := p.Row(party.RowFront)
	require.Len(t, front, 2)
	assert.Equal(t, "aria", front[0].CharacterID)
	assert.Equal(t, "cole", front[1].CharacterID)

	back := p.Row(party.RowBack)
	require.Len(t, back, 2)
	assert.Equal(t, "bram", back[0].CharacterID)
}

func TestSetRow(t *testing.T) {
	p := party.New(party.State{}, 6)
	require.True(t, p.AddMember(member("aria", "berserker")))
	assert.True(t, p.SetRow("aria", party.RowBack))
	m, _ := p.Member("aria")
	assert.Equal(t, party.RowBack, m.Row)
	assert.False(t, p.SetRow("aria", "sideways"))
	assert.False(t, p.SetRow("nobody", party.RowBack))
}

func TestAdjustMorale_Clamped(t *testing.T) {
	p := party.New(party.State{}, 6)
	require.True(t, p.AddMember(member("aria", "berserker")))

	assert.Equal(t, 100, p.AdjustMorale("aria", 500))
	assert.Equal(t, 0, p.AdjustMorale("aria", -500))
	assert.Equal(t, -1, p.AdjustMorale("nobody", 10))
}

func TestMoraleModifier_Bands(t *testing.T) {
	tests := []struct {
		morale int
		want   party.MoraleModifier
	}{
		{0, party.MoraleModifier{DamagePercent: -10, CritBonus: -5}},
		{25, party.MoraleModifier{DamagePercent: -10, CritBonus: -5}},
		{26, party.MoraleModifier{}},
		{50, party.MoraleModifier{}},
		{74, party.MoraleModifier{}},
		{75, party.MoraleModifier{DamagePercent: 10, CritBonus: 5}},
		{89, party.MoraleModifier{DamagePercent: 10, CritBonus: 5}},
		{90, party.MoraleModifier{DamagePercent: 20, CritBonus: 10}},
		{100, party.MoraleModifier{DamagePercent: 20, CritBonus: 10}},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("morale=%d", tc.morale), func(t *testing.T) {
			p := party.New(party.State{}, 6)
			m := member("aria", "berserker")
			m.Morale = tc.morale
			require.True(t, p.AddMember(m))
			assert.Equal(t, tc.want, p.MoraleModifierFor("aria"))
		})
	}
}

func TestStateRoundTrip(t *testing.T) {
	p := party.New(party.State{}, 6)
	require.True(t, p.AddMember(member("aria", "berserker")))
	require.True(t, p.AddMember(member("bram", "cleric")))
	require.True(t, p.TransferLeadership("bram"))
	require.True(t, p.SetRow("aria", party.RowBack))
	p.AdjustMorale("bram", 45)

	restored := party.New(p.GetState(), 6)
	assert.Equal(t, p.GetState(), restored.GetState())
	lead, ok := restored.Leader()
	require.True(t, ok)
	assert.Equal(t, "bram", lead.CharacterID)
}

func TestNew_NormalizesCorruptState(t *testing.T) {
	p := party.New(party.State{Members: []party.MemberState{
		{CharacterID: "aria", Morale: 250, Leader: false},
		{CharacterID: "bram", Morale: -30, Leader: true, Row: party.RowBack},
		{CharacterID: "bram", Morale: 50}, // duplicate, dropped
		{CharacterID: "", Morale: 50},     // empty id, dropped
	}}, 6)

	assert.Equal(t, 2, p.Size())
	aria, _ := p.Member("aria")
	assert.Equal(t, 100, aria.Morale)
	assert.Equal(t, party.RowFront, aria.Row)
	bram, _ := p.Member("bram")
	assert.Equal(t, 0, bram.Morale)

	lead, ok := p.Leader()
	require.True(t, ok)
	assert.Equal(t, "bram", lead.CharacterID, "the flagged leader survives the reload")
}

func TestNew_DropsMembersBeyondCap(t *testing.T) {
	st := party.State{}
	for i := 0; i < 8; i++ {
		st.Members = append(st.Members, member(fmt.Sprintf("m%d", i), "ranger"))
	}
	p := party.New(st, 6)
	assert.Equal(t, 6, p.Size())
}

func TestPropertyParty_SingleLeaderInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := party.New(party.State{}, 4)
		ids := []string{"a", "b", "c", "d", "e"}
		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "id")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				p.AddMember(member(id, "ranger"))
			case 1:
				p.RemoveMember(id)
			case 2:
				p.TransferLeadership(id)
			}
			leaders := 0
			for _, m := range p.Members() {
				if m.Leader {
					leaders++
				}
			}
			if p.Size() > 0 {
				assert.Equal(t, 1, leaders)
			} else {
				assert.Zero(t, leaders)
			}
			assert.LessOrEqual(t, p.Size(), 4)
		}
	})
}
