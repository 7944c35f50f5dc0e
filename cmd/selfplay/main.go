// selfplay runs a batch of engine-vs-engine games and prints a summary.
// Settings come from the selfplay-* flags, e.g.
//
//	selfplay --selfplay-games 200 --selfplay-p1-depth 4 --selfplay-db games.db
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/automatic"
	"github.com/domino14/caissa/config"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(1)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *automatic.ResultStore
	if path := cfg.GetString(config.ConfigSelfplayDB); path != "" {
		var err error
		store, err = automatic.OpenResultStore(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("opening-result-store")
		}
		defer store.Close()
	}

	summary, runID, err := automatic.StartCompVComp(ctx, cfg, store)
	if err != nil {
		log.Error().Err(err).Str("run-id", runID).Msg("self-play-failed")
		return
	}
	fmt.Printf("run %s\n", runID)
	if err := summary.Report(os.Stdout); err != nil {
		log.Error().Err(err).Msg("writing-report")
	}
}
