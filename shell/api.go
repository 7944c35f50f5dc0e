package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/caissa/automatic"
	"github.com/domino14/caissa/clock"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/evaluation"
	"github.com/domino14/caissa/game"
	"github.com/domino14/caissa/move"
)

const defaultMoveTime = 5 * time.Second

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

// Duration reads a number of milliseconds, or a Go duration such as 1m30s.
func (c CmdOptions) Duration(key string) (time.Duration, bool, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, false, nil
	}
	if ms, err := strconv.Atoi(v[0]); err == nil {
		return time.Duration(ms) * time.Millisecond, true, nil
	}
	d, err := time.ParseDuration(v[0])
	return d, true, err
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) requireGame() error {
	if sc.game == nil {
		return errNoPosition
	}
	return nil
}

// position handles `position startpos [moves ...]` and
// `position fen <fen> [moves ...]`.
func (sc *ShellController) position(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("position startpos|fen <fen> [moves <move>...]")
	}
	setup, rest := cmd.args, []string(nil)
	if _, i, ok := lo.FindIndexOf(cmd.args, func(a string) bool { return a == "moves" }); ok {
		setup, rest = cmd.args[:i], cmd.args[i+1:]
	}
	if len(setup) == 0 {
		return nil, errors.New("position needs startpos or fen before the moves")
	}
	var g *game.Game
	switch setup[0] {
	case "startpos":
		g = game.NewGame()
	case "fen":
		if len(setup) < 2 {
			return nil, errors.New("position fen needs a FEN string")
		}
		var err error
		g, err = game.FromFEN(strings.Join(setup[1:], " "))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown position type %q", setup[0])
	}
	for _, m := range rest {
		if _, err := g.Play(m); err != nil {
			return nil, fmt.Errorf("move %s: %w", m, err)
		}
	}
	sc.game = g
	if sc.solver != nil {
		sc.solver.Cache().Reset()
	}
	return msg(g.ToDisplayText()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("play <move> [<move>...]")
	}
	for i, arg := range cmd.args {
		if _, err := sc.game.Play(arg); err != nil {
			for j := 0; j < i; j++ {
				sc.game.Undo()
			}
			return nil, fmt.Errorf("move %s: %w", arg, err)
		}
	}
	return sc.display(cmd)
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	n := 1
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < n; i++ {
		if _, err := sc.game.Undo(); err != nil {
			return nil, err
		}
	}
	return sc.display(cmd)
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	solver, err := sc.getSolver()
	if err != nil {
		return nil, err
	}
	capturesOnly := cmd.options.Bool("captures")
	ord := solver.Orderer()
	ordered := ord.Order(sc.game.LegalMoves(capturesOnly))
	if len(ordered) == 0 {
		return msg("No legal moves."), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s%-24s%s\n", "#", "Move", "Priority")
	for i, m := range ordered {
		fmt.Fprintf(&sb, "%-6d%-24s%d\n", i+1, m.ShortDescription(), ord.Priority(m))
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) display(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	out := sc.game.ToDisplayText()
	if o := sc.game.Outcome(); o.Result != game.Ongoing {
		out += fmt.Sprintf("Game over: %s (%s)\n", o.Result, o.Reason)
	}
	return msg(out), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	solver, err := sc.getSolver()
	if err != nil {
		return nil, err
	}
	score := solver.Evaluator().Evaluate(sc.game)
	prog := evaluation.Progression(len(sc.game.Pieces()))
	return msg(fmt.Sprintf("eval %d (for %s), progression %.3f, blend %s",
		score, sc.game.SideToMove(), prog, solver.Evaluator().Blend())), nil
}

// search handles `go`. Without limits it thinks for a fixed time.
func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	solver, err := sc.getSolver()
	if err != nil {
		return nil, err
	}
	depth, err := cmd.options.IntDefault("depth", sc.config.GetInt(config.ConfigMaxDepth))
	if err != nil {
		return nil, err
	}
	moveTime, hasMoveTime, err := cmd.options.Duration("movetime")
	if err != nil {
		return nil, err
	}
	remaining, hasRemaining, err := cmd.options.Duration("remaining")
	if err != nil {
		return nil, err
	}
	if _, ok := cmd.options["depth"]; !ok && !hasMoveTime && !hasRemaining {
		moveTime, hasMoveTime = defaultMoveTime, true
	}

	ctx := context.Background()
	var budget clock.Budget = clock.Unlimited
	if hasRemaining {
		budget = clock.NewTurnClock(remaining)
	}
	if hasMoveTime {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, moveTime)
		defer cancel()
	}
	if logPath := cmd.options.String("log"); logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		solver.SetLogStream(f)
		defer solver.SetLogStream(nil)
	}
	solver.SetMaxDepth(depth)
	defer solver.SetMaxDepth(sc.config.GetInt(config.ConfigMaxDepth))

	m, err := solver.ChooseMove(ctx, sc.game, budget)
	if err != nil {
		return nil, err
	}
	sc.lastBest = m
	st := solver.Stats()
	score := "none"
	if st.Depth > 0 {
		score = scoreString(st.Score)
	}
	log.Debug().Interface("stats", st).Msg("search-stats")
	return msg(fmt.Sprintf("bestmove %s\nscore %s depth %d nodes %d qnodes %d cache-hits %d time %s%s",
		m.UCI(), score, st.Depth, st.Nodes, st.QNodes, st.Cache.Hits,
		st.Elapsed.Round(time.Millisecond), lo.Ternary(st.Aborted, " (stopped)", ""))), nil
}

// scoreString shows mate scores as moves to mate.
func scoreString(v int) string {
	switch {
	case v > evaluation.MaxStatic:
		return fmt.Sprintf("mate %d", (evaluation.Mate-v+1)/2)
	case v < -evaluation.MaxStatic:
		return fmt.Sprintf("mate -%d", (evaluation.Mate+v+1)/2)
	}
	return fmt.Sprintf("cp %d", v)
}

func settingsText(cfg *config.Config) string {
	keys := cfg.AllKeys()
	slices.Sort(keys)
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s: %v\n", k, cfg.Get(k))
	}
	return sb.String()
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(settingsText(sc.config)), nil
	}
	key := cmd.args[0]
	if !lo.Contains(sc.config.AllKeys(), key) {
		return nil, fmt.Errorf("no such setting: %s", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	value := strings.Join(cmd.args[1:], " ")
	switch key {
	case config.ConfigBlend, config.ConfigSelfplayP1Blend, config.ConfigSelfplayP2Blend:
		if _, err := evaluation.ParseBlend(value); err != nil {
			return nil, err
		}
	case config.ConfigCacheScope:
		if value != config.CacheScopeGame && value != config.CacheScopeTurn {
			return nil, fmt.Errorf("%s must be %s or %s", key, config.CacheScopeGame, config.CacheScopeTurn)
		}
	}
	sc.config.Set(key, value)
	// Rebuild the solver on next use so it picks up the change.
	sc.solver = nil
	return msg(fmt.Sprintf("%s set to %s", key, value)), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "stop" {
		if sc.autoplayCancel == nil {
			return nil, errors.New("no automatic games are running")
		}
		sc.autoplayCancel()
		<-sc.autoplayDone
		return msg("stopped"), nil
	}
	if automatic.IsPlaying.Value() > 0 {
		return nil, automatic.ErrAlreadyPlaying
	}
	cfg := sc.config.Clone()
	for opt, key := range map[string]string{
		"games":   config.ConfigSelfplayGames,
		"threads": config.ConfigSelfplayThreads,
		"depth1":  config.ConfigSelfplayP1Depth,
		"depth2":  config.ConfigSelfplayP2Depth,
	} {
		if _, ok := cmd.options[opt]; ok {
			n, err := cmd.options.Int(opt)
			if err != nil {
				return nil, err
			}
			cfg.Set(key, n)
		}
	}
	if d, ok, err := cmd.options.Duration("gametime"); err != nil {
		return nil, err
	} else if ok {
		cfg.Set(config.ConfigSelfplayGameTime, d)
	}
	if db := cmd.options.String("db"); db != "" {
		cfg.Set(config.ConfigSelfplayDB, db)
	}

	var store *automatic.ResultStore
	if path := cfg.GetString(config.ConfigSelfplayDB); path != "" {
		var err error
		store, err = automatic.OpenResultStore(path)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.autoplayCancel, sc.autoplayDone = cancel, done
	go func() {
		defer close(done)
		if store != nil {
			defer store.Close()
		}
		summary, runID, err := automatic.StartCompVComp(ctx, cfg, store)
		if err != nil {
			sc.showError(err)
			return
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "run %s\n", runID)
		if err := summary.Report(&sb); err != nil {
			sc.showError(err)
			return
		}
		sc.showMessage(sb.String())
	}()
	return msg(fmt.Sprintf("Started %d games on %d threads. Use `autoplay stop` to stop early.",
		cfg.GetInt(config.ConfigSelfplayGames), cfg.GetInt(config.ConfigSelfplayThreads))), nil
}

// legalMoveStrings is used for completion.
func (sc *ShellController) legalMoveStrings() []string {
	if sc.game == nil {
		return nil
	}
	return lo.Map(sc.game.LegalMoves(false), func(m move.Move, _ int) string {
		return m.UCI()
	})
}
