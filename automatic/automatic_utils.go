package automatic

// Bulk computer vs computer games.

import (
	"context"
	"errors"
	"expvar"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/caissa/config"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

type job struct {
	p1White bool
}

// StartCompVComp plays the configured number of games over the configured
// number of workers, alternating colors, and blocks until they are done or
// ctx is cancelled. Games are written to store when it is not nil. The
// summary covers the games that finished.
func StartCompVComp(ctx context.Context, cfg *config.Config, store *ResultStore) (*Summary, string, error) {
	if IsPlaying.Value() > 0 {
		return nil, "", ErrAlreadyPlaying
	}
	numGames := cfg.GetInt(config.ConfigSelfplayGames)
	threads := max(cfg.GetInt(config.ConfigSelfplayThreads), 1)
	runID := uuid.NewString()
	log.Info().Str("run-id", runID).Int("games", numGames).Int("threads", threads).
		Msg("starting-comp-v-comp")

	var players [2]PlayerSpec
	runners := make([]*GameRunner, threads)
	for i := range runners {
		r, err := NewGameRunner(cfg, runID)
		if err != nil {
			return nil, "", err
		}
		runners[i] = r
		players = r.Players()
	}

	CVCCounter.Set(0)
	jobs := make(chan job, 100)
	results := make(chan GameRecord, 100)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < numGames; i++ {
			select {
			case jobs <- job{p1White: i%2 == 0}:
			case <-gctx.Done():
				log.Info().Msg("got-stop-signal-exiting-soon")
				return nil
			}
		}
		log.Info().Msg("finished-queueing-jobs")
		return nil
	})

	workers, wctx := errgroup.WithContext(gctx)
	for _, r := range runners {
		r := r
		workers.Go(func() error {
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for j := range jobs {
				rec, err := r.PlayGame(wctx, j.p1White)
				if err != nil {
					if wctx.Err() != nil {
						return nil
					}
					return err
				}
				results <- rec
				CVCCounter.Add(1)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return workers.Wait()
	})

	var recs []GameRecord
	var storeErr error
	for rec := range results {
		recs = append(recs, rec)
		if store != nil && storeErr == nil {
			// The caller's context, so a stop signal does not lose games
			// that already finished.
			storeErr = store.Save(context.WithoutCancel(ctx), rec)
		}
		if len(recs)%10 == 0 {
			log.Info().Int("finished", len(recs)).Msg("games-played")
		}
	}
	if err := g.Wait(); err != nil {
		return nil, runID, err
	}
	if storeErr != nil {
		return nil, runID, storeErr
	}
	log.Info().Int("games", len(recs)).Msg("all-games-finished")
	return Summarize(players[0].Name, players[1].Name, recs), runID, nil
}
