package automatic

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/domino14/caissa/stats"
)

const (
	histogramBins  = 12
	histogramWidth = 40
	eloConfidence  = 95
)

// Summary aggregates a match from the first player's point of view.
type Summary struct {
	P1, P2     string
	Score      stats.MatchScore
	AsWhite    stats.MatchScore
	Lengths    stats.Statistic
	Reasons    map[string]int
	Elo        float64
	EloLow     float64
	EloHigh    float64
	Duplicates int

	lengths []float64
}

// Summarize builds a summary over finished games.
func Summarize(p1, p2 string, recs []GameRecord) *Summary {
	s := &Summary{P1: p1, P2: p2}
	for _, r := range recs {
		s.add(r)
	}
	s.Reasons = lo.CountValuesBy(recs, func(r GameRecord) string {
		if r.Reason == "" {
			return "unknown"
		}
		return r.Reason
	})
	seen := lo.CountValuesBy(recs, func(r GameRecord) uint64 { return r.Fingerprint })
	s.Duplicates = len(recs) - len(seen)
	s.Elo, s.EloLow, s.EloHigh = stats.EloDifference(s.Score, eloConfidence)
	return s
}

func (s *Summary) add(r GameRecord) {
	pts := r.P1Points()
	tally := func(m *stats.MatchScore) {
		switch pts {
		case 1:
			m.Wins++
		case 0:
			m.Losses++
		default:
			m.Draws++
		}
	}
	tally(&s.Score)
	if r.P1White {
		tally(&s.AsWhite)
	}
	s.Lengths.Push(float64(r.Plies))
	s.lengths = append(s.lengths, float64(r.Plies))
}

// Report writes a human-readable summary, including a histogram of game
// lengths in plies.
func (s *Summary) Report(w io.Writer) error {
	var ss strings.Builder
	fmt.Fprintf(&ss, "%s vs %s: %d games\n", s.P1, s.P2, s.Score.Games())
	fmt.Fprintf(&ss, "%-22s%s (%.1f%%)\n", "Score:", s.Score, 100*s.Score.Fraction())
	fmt.Fprintf(&ss, "%-22s%s\n", "As white:", s.AsWhite)
	fmt.Fprintf(&ss, "%-22s%.1f [%.1f, %.1f] (%d%% confidence)\n", "Elo difference:",
		s.Elo, s.EloLow, s.EloHigh, eloConfidence)
	fmt.Fprintf(&ss, "%-22s%.1f ± %.1f (min %.0f, max %.0f)\n", "Game length (plies):",
		s.Lengths.Mean(), s.Lengths.Stdev(), s.Lengths.Min(), s.Lengths.Max())
	fmt.Fprintf(&ss, "%-22s%d\n", "Duplicate games:", s.Duplicates)
	reasons := lo.Keys(s.Reasons)
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(&ss, "  %-20s%d\n", reason, s.Reasons[reason])
	}
	if _, err := io.WriteString(w, ss.String()); err != nil {
		return err
	}
	if len(s.lengths) == 0 {
		return nil
	}
	h := histogram.Hist(histogramBins, s.lengths)
	return histogram.Fprint(w, h, histogram.Linear(histogramWidth))
}

// Decisive counts games that ended on the board rather than by a draw.
func (s *Summary) Decisive() int {
	return s.Score.Wins + s.Score.Losses
}
