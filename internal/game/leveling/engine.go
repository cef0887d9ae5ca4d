package leveling

import "github.com/duskhollow/emberfall/internal/game/ruleset"

// State is the serializable leveling state.
//
// Invariant: Level is monotonic and bounded by the configured maximum;
// unspent counters only rise on level-up and only fall on explicit spends.
type State struct {
	Level              int   `json:"level"`
	CurrentXP          int64 `json:"current_xp"`
	TotalXPEarned      int64 `json:"total_xp_earned"`
	UnspentStatPoints  int   `json:"unspent_stat_points"`
	UnspentSkillPoints int   `json:"unspent_skill_points"`
}

// LevelUpResult records one level gained by an AddXP call, carrying the point
// grants and the per-level HP/MP inputs for the caller to apply to the stat
// engine.
type LevelUpResult struct {
	NewLevel           int
	StatPointsGranted  int
	SkillPointsGranted int
	HPPerLevel         int
	MPPerLevel         int
}

// Engine tracks one character's experience and point budgets.
// Not safe for concurrent use.
type Engine struct {
	state         State
	curve         Curve
	statPerLevel  int
	skillPerLevel int
}

// NewEngine constructs an Engine from a serializable state and the balance
// document. The state is copied in; levels below 1 are lifted to 1.
func NewEngine(state State, bal *ruleset.Balance) *Engine {
	if state.Level < 1 {
		state.Level = 1
	}
	return &Engine{
		state:         state,
		curve:         NewCurve(bal),
		statPerLevel:  bal.StatPointsPerLevel,
		skillPerLevel: bal.SkillPointsPerLevel,
	}
}

// GetState returns a copy of the leveling state, safe to serialize.
func (e *Engine) GetState() State {
	return e.state
}

// Level returns the current level.
func (e *Engine) Level() int { return e.state.Level }

// UnspentStatPoints returns the unspent stat point counter.
func (e *Engine) UnspentStatPoints() int { return e.state.UnspentStatPoints }

// UnspentSkillPoints returns the unspent skill point counter.
func (e *Engine) UnspentSkillPoints() int { return e.state.UnspentSkillPoints }

// XPForLevel returns the cumulative XP required to reach level.
func (e *Engine) XPForLevel(level int) int64 {
	return e.curve.XPForLevel(level)
}

// XPToNextLevel returns the XP still needed for the next level, or positive
// infinity at the level cap.
func (e *Engine) XPToNextLevel() float64 {
	return e.curve.XPToNext(e.state.Level, e.state.CurrentXP)
}

// XPProgress returns the progress fraction toward the next level in [0, 1].
func (e *Engine) XPProgress() float64 {
	return e.curve.Progress(e.state.Level, e.state.CurrentXP)
}

// AddXP awards experience, applying as many level-ups as the new total
// covers, and returns one result per level gained in ascending order. Past
// the level cap XP still accumulates but no further levels are granted.
//
// Precondition: amount <= 0 is a no-op returning nil.
func (e *Engine) AddXP(amount int64, hpPerLevel, mpPerLevel int) []LevelUpResult {
	if amount <= 0 {
		return nil
	}
	e.state.CurrentXP += amount
	e.state.TotalXPEarned += amount

	var results []LevelUpResult
	for e.state.Level < e.curve.MaxLevel() &&
		e.state.CurrentXP >= e.curve.XPForLevel(e.state.Level+1) {
		e.state.Level++
		e.state.UnspentStatPoints += e.statPerLevel
		e.state.UnspentSkillPoints += e.skillPerLevel
		results = append(results, LevelUpResult{
			NewLevel:           e.state.Level,
			StatPointsGranted:  e.statPerLevel,
			SkillPointsGranted: e.skillPerLevel,
			HPPerLevel:         hpPerLevel,
			MPPerLevel:         mpPerLevel,
		})
	}
	return results
}

// SpendStatPoint debits one unspent stat point.
//
// Postcondition: returns false and leaves the counter unchanged when it is
// already zero.
func (e *Engine) SpendStatPoint() bool {
	if e.state.UnspentStatPoints <= 0 {
		return false
	}
	e.state.UnspentStatPoints--
	return true
}

// SpendSkillPoint debits one unspent skill point.
//
// Postcondition: returns false and leaves the counter unchanged when it is
// already zero.
func (e *Engine) SpendSkillPoint() bool {
	if e.state.UnspentSkillPoints <= 0 {
		return false
	}
	e.state.UnspentSkillPoints--
	return true
}

// RefundSkillPoints re-credits points returned by a skill-tree reset.
//
// Precondition: n <= 0 is a no-op.
func (e *Engine) RefundSkillPoints(n int) {
	if n > 0 {
		e.state.UnspentSkillPoints += n
	}
}
