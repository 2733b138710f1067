// Package storage persists episode results to SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lmazzoli/web2048-rl/game2048"
	"github.com/lmazzoli/web2048-rl/types"
)

// Store manages the SQLite database connection for episode persistence.
type Store struct {
	db *sql.DB
}

var _ types.EpisodeSink = &Store{}

// EpisodeRecord is one persisted episode outcome.
type EpisodeRecord struct {
	ID         int64
	Experiment string
	Run        int
	Episode    int
	Steps      int
	Score      int
	MaxTile    int
	DurationMs int64
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path, creating
// parent directories and the schema as needed.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			experiment TEXT NOT NULL,
			run INTEGER NOT NULL,
			episode INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_experiment ON episodes(experiment);
		CREATE INDEX IF NOT EXISTS idx_episodes_top ON episodes(experiment, score DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records the outcome of one episode. Satisfies the
// experiment runner's sink contract.
func (s *Store) SaveEpisode(experiment string, run int, eCtx *types.EpisodeContext) error {
	maxTile := 0
	if _, _, _, last, ok := eCtx.Trace.Last(); ok {
		if state, ok := last.(*game2048.BoardState); ok {
			maxTile = state.Board.MaxTile()
		}
	}

	_, err := s.db.Exec(
		"INSERT INTO episodes (experiment, run, episode, steps, score, max_tile, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)",
		experiment, run, eCtx.Episode, eCtx.Timesteps,
		int(eCtx.Trace.TotalReward()), maxTile, eCtx.RunDuration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save episode: %w", err)
	}
	return nil
}

// TopEpisodes retrieves the best-scoring episodes for an experiment.
func (s *Store) TopEpisodes(experiment string, limit int) ([]EpisodeRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		"SELECT id, experiment, run, episode, steps, score, max_tile, duration_ms, created_at FROM episodes WHERE experiment = ? ORDER BY score DESC LIMIT ?",
		experiment, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var records []EpisodeRecord
	for rows.Next() {
		var r EpisodeRecord
		if err := rows.Scan(&r.ID, &r.Experiment, &r.Run, &r.Episode, &r.Steps, &r.Score, &r.MaxTile, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan episode: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
