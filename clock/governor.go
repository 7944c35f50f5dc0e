package clock

import "math"

const (
	DefaultFraction   = 0.25
	DefaultPhaseFloor = 0.25
)

// Governor decides when to stop searching. The share of the remaining time
// a move may use grows as the game heads into the endgame.
type Governor struct {
	Fraction   float64
	PhaseFloor float64
}

func DefaultGovernor() Governor {
	return Governor{Fraction: DefaultFraction, PhaseFloor: DefaultPhaseFloor}
}

// Limit is the largest elapsed/remaining ratio allowed at the given
// progression.
func (g Governor) Limit(progression float64) float64 {
	return g.Fraction * math.Min(g.PhaseFloor+progression, 1)
}

// ShouldAbort reports whether the search has used its share of the clock.
// No time left at all always aborts.
func (g Governor) ShouldAbort(b Budget, progression float64) bool {
	remaining := b.Remaining()
	if remaining <= 0 {
		return true
	}
	return float64(b.ElapsedThisTurn())/float64(remaining) > g.Limit(progression)
}
