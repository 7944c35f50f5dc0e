package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/move"
)

// UCILoop speaks a subset of the UCI protocol on in and out, enough for a
// GUI to set up positions and ask for moves.
func UCILoop(cfg *config.Config, in io.Reader, out io.Writer) {
	// we're using the shell for its helper structures/functions only.
	sc := newShellController(cfg, io.Discard)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		quit, err := processUCICommand(sc, scanner.Text(), out)
		if err != nil {
			fmt.Fprintln(out, "info string error", err.Error())
		}
		if quit {
			break
		}
	}
}

func processUCICommand(sc *ShellController, line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "uci":
		fmt.Fprintln(out, "id name caissa")
		fmt.Fprintln(out, "id author the caissa developers")
		fmt.Fprintln(out, "uciok")
	case "isready":
		fmt.Fprintln(out, "readyok")
	case "ucinewgame":
		sc.game = nil
		if sc.solver != nil {
			sc.solver.Cache().Reset()
		}
	case "position":
		_, err := sc.position(&shellcmd{cmd: "position", args: fields[1:]})
		return false, err
	case "go":
		m, err := uciGo(sc, fields[1:])
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, "bestmove", m.UCI())
	case "quit":
		return true, nil
	default:
		log.Debug().Str("line", line).Msg("ignoring-uci-command")
	}
	return false, nil
}

// uciGo translates UCI search limits into shell `go` options. The clock of
// the side to move becomes the remaining time.
func uciGo(sc *ShellController, fields []string) (move.Move, error) {
	if err := sc.requireGame(); err != nil {
		return move.Move{}, err
	}
	opts := CmdOptions{}
	for i := 0; i+1 < len(fields); i += 2 {
		if _, err := strconv.Atoi(fields[i+1]); err != nil {
			return move.Move{}, fmt.Errorf("bad value for %s: %w", fields[i], err)
		}
		opts[fields[i]] = []string{fields[i+1]}
	}
	goOpts := CmdOptions{}
	clockKey := "wtime"
	if sc.game.SideToMove() == move.Black {
		clockKey = "btime"
	}
	if v, ok := opts[clockKey]; ok {
		goOpts["remaining"] = v
	}
	for _, k := range []string{"movetime", "depth"} {
		if v, ok := opts[k]; ok {
			goOpts[k] = v
		}
	}
	if _, err := sc.search(&shellcmd{cmd: "go", options: goOpts}); err != nil {
		return move.Move{}, err
	}
	if sc.lastBest.IsZero() {
		return move.Move{}, errors.New("search returned no move")
	}
	return sc.lastBest, nil
}
