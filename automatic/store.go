package automatic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/caissa/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	fingerprint INTEGER NOT NULL,
	white TEXT NOT NULL,
	black TEXT NOT NULL,
	p1_white INTEGER NOT NULL,
	result INTEGER NOT NULL,
	reason TEXT NOT NULL,
	plies INTEGER NOT NULL,
	moves TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS games_run_id ON games(run_id);
`

// ResultStore keeps finished self-play games in a SQLite file.
type ResultStore struct {
	db *sql.DB
}

// OpenResultStore opens (creating if needed) the store at path. Use
// ":memory:" for a throwaway store.
func OpenResultStore(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: writers from all workers queue up behind it, and an
	// in-memory database stays the same database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Save writes a game, retrying while the database is locked by another
// process.
func (s *ResultStore) Save(ctx context.Context, rec GameRecord) error {
	return retry.Do(
		func() error {
			_, err := s.db.ExecContext(ctx, `INSERT INTO games
				(id, run_id, fingerprint, white, black, p1_white, result, reason, plies, moves, duration_ms)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, rec.RunID, int64(rec.Fingerprint), rec.White, rec.Black,
				rec.P1White, int(rec.Result), rec.Reason, rec.Plies,
				strings.Join(rec.Moves, " "), rec.Duration.Milliseconds())
			return err
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Debug().Err(err).Uint("n", n).Msg("store-busy-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

var ErrRunNotFound = errors.New("no games stored for that run")

// LoadRun returns the games of a run in the order they were stored.
func (s *ResultStore) LoadRun(ctx context.Context, runID string) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, fingerprint, white, black,
		p1_white, result, reason, plies, moves, duration_ms
		FROM games WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []GameRecord
	for rows.Next() {
		var (
			rec    GameRecord
			fp     int64
			result int
			moves  string
			ms     int64
		)
		if err := rows.Scan(&rec.ID, &fp, &rec.White, &rec.Black, &rec.P1White,
			&result, &rec.Reason, &rec.Plies, &moves, &ms); err != nil {
			return nil, err
		}
		rec.RunID = runID
		rec.Fingerprint = uint64(fp)
		rec.Result = game.Result(result)
		if moves != "" {
			rec.Moves = strings.Split(moves, " ")
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrRunNotFound
	}
	return recs, nil
}

// DuplicateGames counts games in a run whose move sequence already
// appeared earlier in the same run.
func (s *ResultStore) DuplicateGames(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) - COUNT(DISTINCT fingerprint)
		FROM games WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
