package stats

// PermanentDuration is the sentinel duration for buffs that never expire.
const PermanentDuration = -1

// Buff is a timed or permanent additive modifier to one stat.
type Buff struct {
	// ID uniquely identifies this buff instance for removal.
	ID string `json:"id"`
	// Stat is the target stat name, primary or derived.
	Stat string `json:"stat"`
	// Magnitude is the signed flat amount added to the stat.
	Magnitude float64 `json:"magnitude"`
	// Duration is the remaining logical ticks; PermanentDuration never expires.
	Duration int `json:"duration"`
	// Source tags the origin of the buff (spell ID, item effect, ...).
	Source string `json:"source,omitempty"`
}

// buffTotal sums the magnitudes of all buffs targeting the named stat.
func buffTotal(buffs []Buff, stat string) float64 {
	var total float64
	for _, b := range buffs {
		if b.Stat == stat {
			total += b.Magnitude
		}
	}
	return total
}
