package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/caissa/config"
)

const mateInOneFEN = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testController() (*ShellController, *bytes.Buffer) {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigCacheSizeLog2, 12)
	cfg.Set(config.ConfigMaxQuiescencePlies, 4)
	out := &bytes.Buffer{}
	return newShellController(cfg, out), out
}

func run(sc *ShellController, line string) (*Response, error) {
	return sc.standardModeSwitch(line, make(chan os.Signal, 1))
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"go -log /path/to/log.yaml",
			&shellcmd{"go", nil, CmdOptions{"log": {"/path/to/log.yaml"}}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, CmdOptions{}},
			nil},
		{"position startpos moves e2e4 -x 1 e7e5 ",
			&shellcmd{"position",
				[]string{"startpos", "moves", "e2e4", "e7e5"},
				CmdOptions{"x": {"1"}}},
			nil,
		},
		{"position fen '8/8/8/8/8/8/8/K6k w - - 0 1'",
			&shellcmd{"position", []string{"fen", "8/8/8/8/8/8/8/K6k w - - 0 1"}, CmdOptions{}},
			nil},
		{"go -depth 3 -depth 4",
			&shellcmd{"go", nil, CmdOptions{"depth": {"3", "4"}}},
			nil},
		{"go -depth",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func TestCmdOptions(t *testing.T) {
	is := is.New(t)
	opts := CmdOptions{"n": {"12"}, "t": {"1500"}, "d": {"2s"}, "b": {"TRUE"}}
	n, err := opts.Int("n")
	is.NoErr(err)
	is.Equal(n, 12)
	_, err = opts.Int("missing")
	is.True(err != nil)
	n, err = opts.IntDefault("missing", 7)
	is.NoErr(err)
	is.Equal(n, 7)
	is.True(opts.Bool("b"))
	is.True(!opts.Bool("missing"))

	d, ok, err := opts.Duration("t")
	is.NoErr(err)
	is.True(ok)
	is.Equal(d.Milliseconds(), int64(1500))
	d, ok, err = opts.Duration("d")
	is.NoErr(err)
	is.True(ok)
	is.Equal(d.Seconds(), 2.0)
	_, ok, _ = opts.Duration("missing")
	is.True(!ok)
}

func TestNeedsPosition(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	for _, line := range []string{"display", "play e2e4", "undo", "moves", "eval", "go -depth 1"} {
		_, err := run(sc, line)
		is.Equal(err, errNoPosition)
	}
	_, err := run(sc, "frobnicate")
	is.True(err != nil)
}

func TestPositionPlayUndo(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	resp, err := run(sc, "position startpos moves e2e4 e7e5")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "white to move"))
	is.Equal(sc.game.Ply(), 2)

	_, err = run(sc, "play g1f3 b8c6")
	is.NoErr(err)
	is.Equal(sc.game.Ply(), 4)

	// A bad move leaves the game as it was.
	_, err = run(sc, "play f1c4 a1a8")
	is.True(err != nil)
	is.Equal(sc.game.Ply(), 4)

	_, err = run(sc, "undo 3")
	is.NoErr(err)
	is.Equal(sc.game.Ply(), 1)
	_, err = run(sc, "undo 2")
	is.True(err != nil)

	_, err = run(sc, "position startpos moves e2e5")
	is.True(err != nil)
	_, err = run(sc, "position moves e2e4")
	is.True(err != nil)
	_, err = run(sc, "position sideways")
	is.True(err != nil)
}

func TestGoFindsMate(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	_, err := run(sc, "position fen "+mateInOneFEN)
	is.NoErr(err)
	resp, err := run(sc, "go -depth 3")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "bestmove a1a8\n"))
	is.True(strings.Contains(resp.message, "score mate 1 depth 1"))
	is.Equal(sc.lastBest.UCI(), "a1a8")

	_, err = run(sc, "play a1a8")
	is.NoErr(err)
	resp, err = run(sc, "display")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Game over: 1-0 (checkmate)"))
	_, err = run(sc, "go -depth 1")
	is.True(err != nil)
}

func TestGoWritesLog(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	path := filepath.Join(t.TempDir(), "search.yaml")
	_, err := run(sc, "position startpos")
	is.NoErr(err)
	_, err = run(sc, "go -depth 2 -log "+path)
	is.NoErr(err)
	dat, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(dat), "depth: 2"))
	is.Equal(sc.config.GetInt(config.ConfigMaxDepth), 20)
}

func TestScoreString(t *testing.T) {
	is := is.New(t)
	is.Equal(scoreString(35), "cp 35")
	is.Equal(scoreString(-120), "cp -120")
	is.Equal(scoreString(9999), "mate 1")
	is.Equal(scoreString(9997), "mate 2")
	is.Equal(scoreString(-9998), "mate -1")
}

func TestMovesAndEval(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	_, err := run(sc, "position startpos moves e2e4 d7d5")
	is.NoErr(err)
	resp, err := run(sc, "moves")
	is.NoErr(err)
	lines := strings.Split(resp.message, "\n")
	// The only capture is listed first.
	is.True(strings.HasPrefix(lines[1], "1     e4d5 (xpawn)"))

	resp, err = run(sc, "moves -captures true")
	is.NoErr(err)
	is.Equal(strings.Count(resp.message, "\n"), 2)

	resp, err = run(sc, "eval")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "eval "))
	is.True(strings.Contains(resp.message, "blend convex"))
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	resp, err := run(sc, "set")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "max-depth: "))

	_, err = run(sc, "position startpos")
	is.NoErr(err)
	_, err = run(sc, "eval")
	is.NoErr(err)
	is.True(sc.solver != nil)

	_, err = run(sc, "set blend literal")
	is.NoErr(err)
	is.True(sc.solver == nil)
	resp, err = run(sc, "eval")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "blend literal"))

	resp, err = run(sc, "set blend")
	is.NoErr(err)
	is.Equal(resp.message, "blend: literal")

	_, err = run(sc, "set blend sideways")
	is.True(err != nil)
	_, err = run(sc, "set cache-scope forever")
	is.True(err != nil)
	_, err = run(sc, "set no-such-key 1")
	is.True(err != nil)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	path := filepath.Join(t.TempDir(), "test.lua")
	script := `
caissa_position("startpos moves e2e4")
caissa_play("e7e5")
local e = caissa_eval("")
if string.sub(e, 1, 5) ~= "eval " then error("bad eval: " .. e) end
local bad = caissa_play("e1e8")
if string.sub(bad, 1, 5) ~= "ERROR" then error("expected an error") end
local r = caissa_go("-depth 1")
if string.sub(r, 1, 9) ~= "bestmove " then error("bad go: " .. r) end
local json = require("json")
local enc = json.encode({result = string.sub(r, 10, 13)})
if string.sub(enc, 1, 11) ~= '{"result":"' then error("bad json: " .. enc) end
`
	is.NoErr(os.WriteFile(path, []byte(script), 0644))
	_, err := run(sc, "script "+path)
	is.NoErr(err)
	is.Equal(sc.game.Ply(), 2)
	is.True(!sc.lastBest.IsZero())

	_, err = run(sc, "script")
	is.True(err != nil)
	_, err = run(sc, "script "+filepath.Join(t.TempDir(), "missing.lua"))
	is.True(err != nil)
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, out := testController()
	_, err := run(sc, "help")
	is.NoErr(err)
	is.True(strings.Contains(out.String(), "position startpos"))
	out.Reset()
	_, err = run(sc, "help go")
	is.NoErr(err)
	is.True(strings.Contains(out.String(), "-movetime"))
	out.Reset()
	_, err = run(sc, "help nothing")
	is.NoErr(err)
	is.True(strings.Contains(out.String(), "no help text"))
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	sc, out := testController()
	sc.config.Set(config.ConfigSelfplayMaxPlies, 8)
	sc.config.Set(config.ConfigSelfplayOpeningPlies, 2)
	db := filepath.Join(t.TempDir(), "games.db")

	_, err := run(sc, "autoplay stop")
	is.True(err != nil)

	resp, err := run(sc, "autoplay -games 2 -threads 1 -depth1 1 -depth2 1 -db "+db)
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "Started 2 games on 1 threads"))
	<-sc.autoplayDone
	is.True(strings.Contains(out.String(), "Elo difference:"))
	is.True(strings.Contains(out.String(), "2 games"))
	// The shell's own settings are untouched.
	is.Equal(sc.config.GetInt(config.ConfigSelfplayGames), 100)
	_, err = os.Stat(db)
	is.NoErr(err)
}

func TestUCI(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigCacheSizeLog2, 12)
	in := strings.NewReader(strings.Join([]string{
		"uci",
		"isready",
		"go depth 1",
		"position fen " + mateInOneFEN,
		"go depth 3 wtime 60000 btime 60000",
		"ucinewgame",
		"position startpos moves e2e4",
		"go movetime 200",
		"quit",
		"isready",
	}, "\n"))
	out := &bytes.Buffer{}
	UCILoop(cfg, in, out)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	is.Equal(lines[0], "id name caissa")
	is.Equal(lines[2], "uciok")
	is.Equal(lines[3], "readyok")
	is.True(strings.HasPrefix(lines[4], "info string error"))
	is.Equal(lines[5], "bestmove a1a8")
	is.True(strings.HasPrefix(lines[6], "bestmove "))
	// Nothing after quit.
	is.Equal(len(lines), 7)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := testController()
	c := NewShellCompleter(sc)

	complete := func(text string) []string {
		got, _ := c.Do([]rune(text), len(text))
		var out []string
		for _, r := range got {
			out = append(out, string(r))
		}
		return out
	}
	is.Equal(complete("pl"), []string{"ay"})
	is.Equal(complete("go -m"), []string{"ovetime"})
	is.Equal(complete("autoplay s"), []string{"top"})
	is.Equal(complete("play e2"), nil)

	_, err := run(sc, "position startpos")
	is.NoErr(err)
	got := complete("play e2")
	is.Equal(len(got), 2)
	is.True(strings.Contains(strings.Join(got, ","), "e4"))
	is.Equal(complete("set max-d"), []string{"epth"})
}
