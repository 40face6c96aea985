// Package storage provides SQLite-based persistence for maze runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/zavo/tiltmaze/internal/maze"
)

// DefaultPath is where the runs database lives unless overridden.
const DefaultPath = "~/.tiltmaze/runs.db"

// Store manages the SQLite database connection for run history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one finished attempt at a level.
type Run struct {
	ID        string
	LevelID   string
	LevelHash uint64
	Outcome   string // "goal" or "hole"
	Duration  time.Duration
	CreatedAt time.Time
}

// LevelStats aggregates the runs of one level.
type LevelStats struct {
	LevelID     string
	Attempts    int
	Completions int
	Losses      int
	BestTime    time.Duration // Zero when never completed
	LastPlayed  time.Time
}

// CompletionRate returns completions / attempts, or 0 without attempts.
func (s LevelStats) CompletionRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Completions) / float64(s.Attempts)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

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

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			level_id TEXT NOT NULL,
			level_hash TEXT NOT NULL,
			outcome TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_level ON runs(level_id);
		CREATE INDEX IF NOT EXISTS idx_runs_best ON runs(level_id, outcome, duration_ms);
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

// RecordRun stores a finished attempt and returns its generated ID.
func (s *Store) RecordRun(res maze.Result) (string, error) {
	if res.Outcome != maze.HitGoal && res.Outcome != maze.HitHole {
		return "", fmt.Errorf("storage: cannot record unfinished run (outcome %s)", res.Outcome)
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, level_id, level_hash, outcome, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, res.LevelID, formatHash(res.LevelHash), res.Outcome.String(),
		res.Duration.Milliseconds(), s.now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot record run: %w", err)
	}

	return id, nil
}

// BestTimes returns the fastest completions of a level, fastest first.
func (s *Store) BestTimes(levelID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, level_id, level_hash, outcome, duration_ms, created_at
		 FROM runs
		 WHERE level_id = ? AND outcome = ?
		 ORDER BY duration_ms ASC, created_at ASC
		 LIMIT ?`,
		levelID, maze.HitGoal.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query best times: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// RecentRuns returns the latest runs across all levels, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, level_id, level_hash, outcome, duration_ms, created_at
		 FROM runs
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recent runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// LevelStats aggregates every run of a level.
// A level without runs yields zero stats, not an error.
func (s *Store) LevelStats(levelID string) (LevelStats, error) {
	stats := LevelStats{LevelID: levelID}

	var (
		best sql.NullInt64
		last sql.NullInt64
	)
	err := s.db.QueryRow(
		`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			MIN(CASE WHEN outcome = ? THEN duration_ms END),
			MAX(created_at)
		 FROM runs
		 WHERE level_id = ?`,
		maze.HitGoal.String(), maze.HitHole.String(), maze.HitGoal.String(), levelID,
	).Scan(&stats.Attempts, &stats.Completions, &stats.Losses, &best, &last)
	if err != nil {
		return stats, fmt.Errorf("storage: cannot query level stats: %w", err)
	}

	if best.Valid {
		stats.BestTime = time.Duration(best.Int64) * time.Millisecond
	}
	if last.Valid {
		stats.LastPlayed = time.UnixMilli(last.Int64)
	}
	return stats, nil
}

// Levels returns the IDs of every level with at least one run, sorted.
func (s *Store) Levels() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT level_id FROM runs ORDER BY level_id`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query levels: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return ids, nil
}

// ClearRuns deletes every run of a level.
func (s *Store) ClearRuns(levelID string) error {
	if _, err := s.db.Exec("DELETE FROM runs WHERE level_id = ?", levelID); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// RunByID fetches a single run. It returns ErrNotFound for unknown IDs.
func (s *Store) RunByID(id string) (Run, error) {
	rows, err := s.db.Query(
		`SELECT id, level_id, level_hash, outcome, duration_ms, created_at
		 FROM runs WHERE id = ?`,
		id,
	)
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNotFound
	}
	return runs[0], nil
}

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			r        Run
			hash     string
			duration int64
			created  int64
		)
		if err := rows.Scan(&r.ID, &r.LevelID, &hash, &r.Outcome, &duration, &created); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.LevelHash = parseHash(hash)
		r.Duration = time.Duration(duration) * time.Millisecond
		r.CreatedAt = time.UnixMilli(created)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// Hashes are stored as hex text since SQLite integers are signed.
func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

func parseHash(s string) uint64 {
	h, _ := strconv.ParseUint(s, 16, 64)
	return h
}
