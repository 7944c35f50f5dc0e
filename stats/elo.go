package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MatchScore tallies game results from the first player's point of view.
type MatchScore struct {
	Wins   int
	Draws  int
	Losses int
}

func (m MatchScore) Games() int {
	return m.Wins + m.Draws + m.Losses
}

// Fraction is the points scored per game, counting a draw as half a point.
func (m MatchScore) Fraction() float64 {
	if m.Games() == 0 {
		return 0.5
	}
	return (float64(m.Wins) + 0.5*float64(m.Draws)) / float64(m.Games())
}

func (m MatchScore) String() string {
	return fmt.Sprintf("+%d =%d -%d", m.Wins, m.Draws, m.Losses)
}

// EloFromFraction converts an expected score into a rating difference.
// Scores of 0 and 1 map to infinities.
func EloFromFraction(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	return -400 * math.Log10(1/p-1)
}

// EloDifference estimates the rating difference implied by the match score
// and returns it with the lower and upper bounds of the given confidence
// interval (0 to 100 percent).
func EloDifference(m MatchScore, confidence float64) (elo, lo, hi float64) {
	n := float64(m.Games())
	p := m.Fraction()
	elo = EloFromFraction(p)
	if n == 0 {
		return 0, 0, 0
	}
	w := float64(m.Wins) / n
	d := float64(m.Draws) / n
	l := float64(m.Losses) / n
	variance := w*(1-p)*(1-p) + d*(0.5-p)*(0.5-p) + l*p*p
	margin := ZVal(confidence) * math.Sqrt(variance/n)
	lo = EloFromFraction(p - margin)
	hi = EloFromFraction(p + margin)
	return elo, lo, hi
}

// ZVal is the two-sided normal quantile for a confidence level given in
// percent, e.g. 1.96 for 95. EloDifference widens its interval by it.
func ZVal(confidence float64) float64 {
	unit := distuv.Normal{Mu: 0, Sigma: 1}
	return unit.Quantile((1 + confidence/100) / 2)
}
