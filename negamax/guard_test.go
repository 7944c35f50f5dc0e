package negamax

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/domino14/caissa/cache"
	"github.com/domino14/caissa/clock"
	"github.com/domino14/caissa/evaluation"
	"github.com/domino14/caissa/game"
	"github.com/domino14/caissa/move"
)

type put struct {
	key   uint64
	score int
}

// recordingCache is a map-backed ScoreCache that remembers every store.
// When budget is set, stores made after it ran out are counted separately.
type recordingCache struct {
	scores map[uint64]int
	puts   []put
	hits   uint64

	budget          *pollBudget
	putsAfterExpiry int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{scores: map[uint64]int{}}
}

func (c *recordingCache) Get(key uint64) (int, bool) {
	v, ok := c.scores[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *recordingCache) Put(key uint64, score int) {
	c.scores[key] = score
	c.puts = append(c.puts, put{key, score})
	if c.budget != nil && c.budget.expired() {
		c.putsAfterExpiry++
	}
}

func (c *recordingCache) Len() int { return len(c.scores) }

func (c *recordingCache) Reset() {
	c.scores = map[uint64]int{}
	c.puts = nil
}

func (c *recordingCache) Stats() cache.Stats {
	return cache.Stats{Hits: c.hits, Stores: uint64(len(c.puts))}
}

func (c *recordingCache) putsFor(key uint64) []int {
	var scores []int
	for _, p := range c.puts {
		if p.key == key {
			scores = append(scores, p.score)
		}
	}
	return scores
}

// pollBudget has plenty of time for its first n polls and none after.
type pollBudget struct {
	n     int
	polls int
}

func (b *pollBudget) ElapsedThisTurn() time.Duration { return 0 }

func (b *pollBudget) Remaining() time.Duration {
	b.polls++
	if b.expired() {
		return 0
	}
	return time.Hour
}

func (b *pollBudget) expired() bool {
	return b.polls > b.n
}

func childKey(g *game.Game, m move.Move) uint64 {
	g.MakeMove(m)
	defer g.UndoMove(m)
	return g.Identity()
}

func TestCachedScoreReuse(t *testing.T) {
	is := is.New(t)
	const α, β = -500, 500
	g := game.NewGame()
	moves := g.LegalMoves(false)
	low, high := moves[0], moves[1]
	lowKey, highKey := childKey(g, low), childKey(g, high)

	s := newTestSolver(t, 1)
	s.SetCache(newRecordingCache())
	want := s.Search(g, 1, α, β)
	base := s.Stats()

	rc := newRecordingCache()
	rc.scores[lowKey] = α - 100
	rc.scores[highKey] = β + 1000
	s.SetCache(rc)
	got := s.Search(g, 1, α, β)
	st := s.Stats()

	// A score at or below alpha is taken as is: no search, no store.
	is.Equal(st.CacheReuses, uint64(1))
	is.Equal(len(rc.putsFor(lowKey)), 0)
	is.Equal(rc.scores[lowKey], α-100)
	is.Equal(st.QNodes, base.QNodes-1)

	// One above alpha is searched again and overwritten.
	is.Equal(len(rc.putsFor(highKey)), 1)
	is.True(rc.scores[highKey] < β)
	// the low child now counts for less than its true score
	is.True(got <= want)
}

func TestAbortMidDepth(t *testing.T) {
	is := is.New(t)
	g := game.NewGame()
	key, fen := g.Identity(), g.FEN()

	budget := &pollBudget{n: 2000}
	rc := newRecordingCache()
	rc.budget = budget
	s := newTestSolver(t, 20)
	s.SetCache(rc)

	m, err := s.ChooseMove(context.Background(), g, budget)
	is.NoErr(err)
	st := s.Stats()
	is.True(st.Aborted)
	is.True(st.Depth >= 1)
	is.True(st.Depth < 20)
	is.True(budget.expired())
	is.Equal(rc.putsAfterExpiry, 0)

	legal := false
	for _, lm := range g.LegalMoves(false) {
		legal = legal || lm == m
	}
	is.True(legal)
	is.Equal(g.Identity(), key)
	is.Equal(g.FEN(), fen)
	is.Equal(g.Ply(), 0)
}

func TestRepeatedRootIsSearched(t *testing.T) {
	is := is.New(t)
	g, err := game.FromFEN("4k1n1/8/4p3/3p4/3Q4/8/8/4K1N1 w - - 0 1")
	is.NoErr(err)
	key := g.Identity()
	for _, uci := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		_, err := g.Play(uci)
		is.NoErr(err)
	}
	is.Equal(g.Identity(), key)
	is.Equal(g.Outcome().Result, game.Ongoing)

	s := newTestSolver(t, 4)
	m, err := s.ChooseMove(context.Background(), g, clock.Unlimited)
	is.NoErr(err)
	st := s.Stats()
	is.True(st.Depth >= 2)
	is.True(st.Nodes+st.QNodes > uint64(len(g.LegalMoves(false))))
	is.True(st.Score > -evaluation.MaxStatic)
	// d4d5 drops the queen to exd5
	is.True(m.UCI() != "d4d5")
	is.True(!hangsPiece(g, m, s.evaluator.Tables()))
}
