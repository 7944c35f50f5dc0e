// Package automatic plays engine-vs-engine games, in bulk, so that two
// search configurations can be compared.
package automatic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/caissa/clock"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/game"
	"github.com/domino14/caissa/move"
	"github.com/domino14/caissa/negamax"
)

const (
	ReasonMaxPlies = "max-plies"
	ReasonTimeout  = "time-forfeit"
)

// PlayerSpec is the search configuration of one side of a match.
type PlayerSpec struct {
	Name  string
	Depth int
	Blend string
}

func (p PlayerSpec) String() string {
	return fmt.Sprintf("d%d-%s", p.Depth, p.Blend)
}

// GameRecord is one finished game.
type GameRecord struct {
	ID          string
	RunID       string
	Fingerprint uint64
	White       string
	Black       string
	P1White     bool
	Result      game.Result
	Reason      string
	Plies       int
	Moves       []string
	Duration    time.Duration
}

// P1Points is the first player's score for the game: 1, 0.5 or 0.
func (r GameRecord) P1Points() float64 {
	switch {
	case r.Result == game.Draw:
		return 0.5
	case (r.Result == game.WhiteWins) == r.P1White:
		return 1
	}
	return 0
}

// Fingerprint identifies a move sequence, so duplicate games from the same
// opening can be spotted.
func Fingerprint(moves []string) uint64 {
	return xxhash.Sum64String(strings.Join(moves, " "))
}

// GameRunner plays games between two fixed players. Each runner owns its
// solvers, so give every goroutine its own runner.
type GameRunner struct {
	config       *config.Config
	players      [2]PlayerSpec
	solvers      [2]*negamax.Solver
	gameTime     time.Duration
	openingPlies int
	maxPlies     int
	runID        string

	game     *game.Game
	gamechan chan string
}

// NewGameRunner builds a runner for the two players described by cfg.
func NewGameRunner(cfg *config.Config, runID string) (*GameRunner, error) {
	r := &GameRunner{
		config:       cfg,
		gameTime:     cfg.GetDuration(config.ConfigSelfplayGameTime),
		openingPlies: cfg.GetInt(config.ConfigSelfplayOpeningPlies),
		maxPlies:     cfg.GetInt(config.ConfigSelfplayMaxPlies),
		runID:        runID,
	}
	r.players[0] = PlayerSpec{
		Depth: cfg.GetInt(config.ConfigSelfplayP1Depth),
		Blend: cfg.GetString(config.ConfigSelfplayP1Blend),
	}
	r.players[1] = PlayerSpec{
		Depth: cfg.GetInt(config.ConfigSelfplayP2Depth),
		Blend: cfg.GetString(config.ConfigSelfplayP2Blend),
	}
	for i := range r.players {
		r.players[i].Name = fmt.Sprintf("p%d-%s", i+1, r.players[i])
		s, err := newPlayerSolver(cfg, r.players[i])
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		r.solvers[i] = s
	}
	return r, nil
}

func newPlayerSolver(cfg *config.Config, p PlayerSpec) (*negamax.Solver, error) {
	pcfg := cfg.Clone()
	pcfg.Set(config.ConfigBlend, p.Blend)
	pcfg.Set(config.ConfigMaxDepth, p.Depth)
	return negamax.NewSolver(pcfg)
}

// SetGameChannel makes the runner send the final board of every game to c.
func (r *GameRunner) SetGameChannel(c chan string) {
	r.gamechan = c
}

func (r *GameRunner) Players() [2]PlayerSpec {
	return r.players
}

// playOpening plays up to n random legal moves so games from the same start
// position do not all repeat.
func (r *GameRunner) playOpening(n int) error {
	for i := 0; i < n; i++ {
		if r.game.Outcome().Result != game.Ongoing {
			return nil
		}
		moves := r.game.LegalMoves(false)
		m := moves[frand.Intn(len(moves))]
		if _, err := r.game.Play(m.UCI()); err != nil {
			return err
		}
	}
	return nil
}

// PlayGame plays one game to the end. When p1White is false the second
// player takes white.
func (r *GameRunner) PlayGame(ctx context.Context, p1White bool) (GameRecord, error) {
	r.game = game.NewGame()
	started := time.Now()
	for _, s := range r.solvers {
		s.Cache().Reset()
	}
	// seat[color] is the index of the player with that color.
	seat := [2]int{0, 1}
	if !p1White {
		seat = [2]int{1, 0}
	}
	rec := GameRecord{
		ID:      uuid.NewString(),
		RunID:   r.runID,
		White:   r.players[seat[move.White]].Name,
		Black:   r.players[seat[move.Black]].Name,
		P1White: p1White,
	}
	if err := r.playOpening(r.openingPlies); err != nil {
		return rec, err
	}
	clocks := [2]time.Duration{r.gameTime, r.gameTime}

	outcome := r.game.Outcome()
	for outcome.Result == game.Ongoing {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		if r.game.Ply() >= r.maxPlies {
			outcome = game.Outcome{Result: game.Draw, Reason: ReasonMaxPlies}
			break
		}
		side := r.game.SideToMove()
		tc := clock.NewTurnClock(clocks[side])
		m, err := r.solvers[seat[side]].ChooseMove(ctx, r.game, tc)
		if err != nil {
			return rec, err
		}
		clocks[side] -= tc.ElapsedThisTurn()
		if clocks[side] <= 0 {
			result := game.WhiteWins
			if side == move.White {
				result = game.BlackWins
			}
			outcome = game.Outcome{Result: result, Reason: ReasonTimeout}
			break
		}
		if _, err := r.game.Play(m.UCI()); err != nil {
			return rec, fmt.Errorf("engine chose %s: %w", m.UCI(), err)
		}
		outcome = r.game.Outcome()
	}

	for _, m := range r.game.History() {
		rec.Moves = append(rec.Moves, m.UCI())
	}
	rec.Result = outcome.Result
	rec.Reason = outcome.Reason
	rec.Plies = r.game.Ply()
	rec.Fingerprint = Fingerprint(rec.Moves)
	rec.Duration = time.Since(started)
	log.Debug().Str("id", rec.ID).Str("white", rec.White).Str("black", rec.Black).
		Str("result", rec.Result.String()).Str("reason", rec.Reason).
		Int("plies", rec.Plies).Msg("game-over")
	if r.gamechan != nil {
		r.gamechan <- r.game.ToDisplayText()
	}
	return rec, nil
}

var errNoGame = errors.New("no game has been played yet")

// FEN is the final position of the last game.
func (r *GameRunner) FEN() (string, error) {
	if r.game == nil {
		return "", errNoGame
	}
	return r.game.FEN(), nil
}
