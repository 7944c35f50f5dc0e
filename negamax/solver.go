// Package negamax chooses chess moves with iterative-deepening negamax,
// alpha-beta pruning and a captures-and-checks quiescence search.
package negamax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/caissa/cache"
	"github.com/domino14/caissa/clock"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/evaluation"
	"github.com/domino14/caissa/move"
)

const (
	DefaultMaxDepth           = 20
	DefaultMaxQuiescencePlies = 16

	infinity = evaluation.Mate + 1
)

var ErrNoLegalMoves = errors.New("no legal moves in this position")

// Position is the mutable position a search borrows. Every MakeMove is
// followed by exactly one UndoMove of the same move, in LIFO order.
type Position interface {
	evaluation.Position
	LegalMoves(capturesOnly bool) []move.Move
	MakeMove(m move.Move)
	UndoMove(m move.Move)
	InCheck() bool
	Identity() uint64
}

// Solver searches positions. It is not safe for concurrent use; give each
// goroutine its own.
type Solver struct {
	evaluator  *evaluation.Evaluator
	orderer    Orderer
	cache      cache.ScoreCache
	cacheScope string
	governor   clock.Governor
	maxDepth   int
	maxQPlies  int
	logStream  io.Writer

	// per-search state
	ctx            context.Context
	pos            Position
	budget         clock.Budget
	progression    float64
	rootMoves      []move.Move
	rootScores     []int
	bestMove       move.Move
	bestScore      int
	aborted        bool
	completedDepth int
	nodes          uint64
	qnodes         uint64
	cacheReuses    uint64
	startTime      time.Time
}

// SearchStats summarizes the last ChooseMove.
type SearchStats struct {
	Depth       int
	Score       int
	Nodes       uint64
	QNodes      uint64
	CacheReuses uint64
	Elapsed     time.Duration
	Aborted     bool
	Cache       cache.Stats
}

func loadTables(path string) (*evaluation.Tables, error) {
	obj, err := cache.Load("eval-tables:"+path, func(string) (any, error) {
		return evaluation.LoadTablesFile(path)
	})
	if err != nil {
		return nil, err
	}
	return obj.(*evaluation.Tables), nil
}

// NewSolver builds a solver from configuration.
func NewSolver(cfg *config.Config) (*Solver, error) {
	tables, err := loadTables(cfg.GetString(config.ConfigEvalTables))
	if err != nil {
		return nil, fmt.Errorf("loading evaluation tables: %w", err)
	}
	blend, err := evaluation.ParseBlend(cfg.GetString(config.ConfigBlend))
	if err != nil {
		return nil, err
	}
	var sc cache.ScoreCache
	if l2 := cfg.GetInt(config.ConfigCacheSizeLog2); l2 > 0 {
		sc = cache.NewTable(l2)
	} else {
		sc = cache.NewForMemory(cfg.GetFloat64(config.ConfigCacheMemFraction))
	}
	s := NewSolverWith(evaluation.NewEvaluator(tables, blend), sc)
	s.governor = clock.Governor{
		Fraction:   cfg.GetFloat64(config.ConfigTimeFraction),
		PhaseFloor: cfg.GetFloat64(config.ConfigPhaseFloor),
	}
	s.cacheScope = cfg.GetString(config.ConfigCacheScope)
	s.maxDepth = cfg.GetInt(config.ConfigMaxDepth)
	s.maxQPlies = cfg.GetInt(config.ConfigMaxQuiescencePlies)
	return s, nil
}

// NewSolverWith builds a solver with default limits around an evaluator and
// a cache.
func NewSolverWith(e *evaluation.Evaluator, sc cache.ScoreCache) *Solver {
	return &Solver{
		evaluator:  e,
		orderer:    NewOrderer(e.Tables()),
		cache:      sc,
		cacheScope: config.CacheScopeGame,
		governor:   clock.DefaultGovernor(),
		maxDepth:   DefaultMaxDepth,
		maxQPlies:  DefaultMaxQuiescencePlies,
	}
}

func (s *Solver) SetMaxDepth(d int) {
	s.maxDepth = d
}

func (s *Solver) SetMaxQuiescencePlies(n int) {
	s.maxQPlies = n
}

func (s *Solver) SetCache(c cache.ScoreCache) {
	s.cache = c
}

func (s *Solver) Cache() cache.ScoreCache {
	return s.cache
}

// SetCacheScope is config.CacheScopeGame or config.CacheScopeTurn.
func (s *Solver) SetCacheScope(scope string) {
	s.cacheScope = scope
}

func (s *Solver) SetGovernor(g clock.Governor) {
	s.governor = g
}

// SetLogStream makes the solver write a YAML trace of every completed
// iteration to w. Pass nil to stop.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

func (s *Solver) Evaluator() *evaluation.Evaluator {
	return s.evaluator
}

func (s *Solver) Orderer() Orderer {
	return s.orderer
}

func (s *Solver) prepare(ctx context.Context, pos Position, budget clock.Budget) {
	s.ctx = ctx
	s.pos = pos
	s.budget = budget
	s.progression = evaluation.Progression(len(pos.Pieces()))
	s.rootMoves = nil
	s.rootScores = nil
	s.bestMove = move.Move{}
	s.bestScore = -infinity
	s.aborted = false
	s.completedDepth = 0
	s.nodes = 0
	s.qnodes = 0
	s.cacheReuses = 0
	s.startTime = time.Now()
}

// interrupted polls the clock and the context. Once it has said yes it keeps
// saying yes until the next search.
func (s *Solver) interrupted() bool {
	if s.aborted {
		return true
	}
	if s.ctx.Err() != nil || s.governor.ShouldAbort(s.budget, s.progression) {
		s.aborted = true
	}
	return s.aborted
}

// ChooseMove returns a legal move for pos within budget. It always returns
// a move when one exists, even if the budget is already spent. pos is left
// as it was found.
func (s *Solver) ChooseMove(ctx context.Context, pos Position, budget clock.Budget) (move.Move, error) {
	moves := pos.LegalMoves(false)
	if len(moves) == 0 {
		return move.Move{}, ErrNoLegalMoves
	}
	s.prepare(ctx, pos, budget)
	if s.cacheScope == config.CacheScopeTurn {
		s.cache.Reset()
	}
	s.rootMoves = s.orderer.Order(moves)
	s.rootScores = make([]int, len(s.rootMoves))
	// Fallback if not even one root move gets searched.
	s.bestMove = s.rootMoves[0]

	s.iterativelyDeepen()

	log.Debug().
		Str("move", s.bestMove.UCI()).
		Int("score", s.bestScore).
		Int("depth", s.completedDepth).
		Uint64("nodes", s.nodes).
		Uint64("qnodes", s.qnodes).
		Bool("aborted", s.aborted).
		Dur("elapsed", time.Since(s.startTime)).
		Msg("chose-move")
	return s.bestMove, nil
}

func (s *Solver) iterativelyDeepen() {
	for depth := 1; depth <= s.maxDepth; depth++ {
		if s.interrupted() {
			break
		}
		log.Debug().Int("depth", depth).Msg("deepening-iteratively")
		val := s.negamax(depth, 0, -evaluation.Mate, evaluation.Mate)
		if s.aborted {
			log.Debug().Int("depth", depth).Str("best-so-far", s.bestMove.UCI()).
				Msg("iteration-aborted")
			break
		}
		s.completedDepth = depth
		s.sortRootMoves()
		log.Debug().Int("depth", depth).Int("score", val).
			Str("best", s.bestMove.UCI()).Uint64("nodes", s.nodes+s.qnodes).
			Msg("best-val")
		s.trace(depth, val)
		if IsMateScore(val) {
			// Deeper iterations cannot find a shorter forced line.
			break
		}
	}
}

// sortRootMoves puts the best scoring root moves first for the next
// iteration. The sort is stable so equal scores keep their order.
func (s *Solver) sortRootMoves() {
	idx := make([]int, len(s.rootMoves))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.rootScores[idx[a]] > s.rootScores[idx[b]]
	})
	moves := make([]move.Move, len(idx))
	scores := make([]int, len(idx))
	for i, j := range idx {
		moves[i] = s.rootMoves[j]
		scores[i] = s.rootScores[j]
	}
	s.rootMoves, s.rootScores = moves, scores
}

// IsMateScore reports whether v is a forced mate for either side.
func IsMateScore(v int) bool {
	return v > evaluation.MaxStatic || v < -evaluation.MaxStatic
}

// Stats describes the most recent search.
func (s *Solver) Stats() SearchStats {
	return SearchStats{
		Depth:       s.completedDepth,
		Score:       s.bestScore,
		Nodes:       s.nodes,
		QNodes:      s.qnodes,
		CacheReuses: s.cacheReuses,
		Elapsed:     time.Since(s.startTime),
		Aborted:     s.aborted,
		Cache:       s.cache.Stats(),
	}
}

type rootTrace struct {
	Move  string `yaml:"move"`
	Score int    `yaml:"score"`
}

type iterationTrace struct {
	Depth     int         `yaml:"depth"`
	Score     int         `yaml:"score"`
	Best      string      `yaml:"best"`
	InCheck   bool        `yaml:"in_check"`
	Nodes     uint64      `yaml:"nodes"`
	QNodes    uint64      `yaml:"qnodes"`
	ElapsedMs int64       `yaml:"elapsed_ms"`
	RootMoves []rootTrace `yaml:"root_moves"`
}

func (s *Solver) trace(depth, val int) {
	if s.logStream == nil {
		return
	}
	it := iterationTrace{
		Depth:     depth,
		Score:     val,
		Best:      s.bestMove.UCI(),
		InCheck:   s.pos.InCheck(),
		Nodes:     s.nodes,
		QNodes:    s.qnodes,
		ElapsedMs: time.Since(s.startTime).Milliseconds(),
	}
	for i, m := range s.rootMoves {
		it.RootMoves = append(it.RootMoves, rootTrace{m.UCI(), s.rootScores[i]})
	}
	out, err := yaml.Marshal([]iterationTrace{it})
	if err != nil {
		log.Err(err).Msg("marshalling-trace")
		return
	}
	if _, err := s.logStream.Write(out); err != nil {
		log.Err(err).Msg("writing-trace")
	}
}
