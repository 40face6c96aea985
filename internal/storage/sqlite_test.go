package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zavo/tiltmaze/internal/maze"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// Deterministic, strictly increasing timestamps
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var n int
	store.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return store
}

func result(level string, outcome maze.Outcome, ms int) maze.Result {
	return maze.Result{
		LevelID:   level,
		LevelHash: 0xfedcba9876543210,
		Outcome:   outcome,
		Duration:  time.Duration(ms) * time.Millisecond,
	}
}

func TestOpenCreatesDirectories(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.FileExists(t, dbPath)
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	first, err := Open(dbPath)
	require.NoError(t, err)
	_, err = first.RecordRun(result("a", maze.HitGoal, 1000))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(dbPath)
	require.NoError(t, err)
	defer second.Close()

	stats, err := second.LevelStats("a")
	require.NoError(t, err)
	require.Equal(t, 1, stats.Attempts)
}

func TestRecordRun(t *testing.T) {
	store := setupTestDB(t)

	id, err := store.RecordRun(result("first-steps", maze.HitGoal, 12345))
	require.NoError(t, err)
	require.Len(t, id, 36)

	run, err := store.RunByID(id)
	require.NoError(t, err)
	require.Equal(t, id, run.ID)
	require.Equal(t, "first-steps", run.LevelID)
	require.Equal(t, uint64(0xfedcba9876543210), run.LevelHash)
	require.Equal(t, "goal", run.Outcome)
	require.Equal(t, 12345*time.Millisecond, run.Duration)
	require.False(t, run.CreatedAt.IsZero())
}

func TestRecordRunRejectsUnfinished(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.RecordRun(result("a", maze.Continue, 100))
	require.Error(t, err)

	ids, err := store.Levels()
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestRecordRunUniqueIDs(t *testing.T) {
	store := setupTestDB(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := store.RecordRun(result("a", maze.HitHole, i))
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestRunByIDNotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.RunByID("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBestTimes(t *testing.T) {
	store := setupTestDB(t)

	for _, r := range []maze.Result{
		result("a", maze.HitGoal, 3000),
		result("a", maze.HitHole, 500), // Losses never count
		result("a", maze.HitGoal, 1000),
		result("b", maze.HitGoal, 200), // Other level
		result("a", maze.HitGoal, 2000),
	} {
		_, err := store.RecordRun(r)
		require.NoError(t, err)
	}

	runs, err := store.BestTimes("a", 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	expected := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	for i, run := range runs {
		require.Equal(t, expected[i], run.Duration)
		require.Equal(t, "goal", run.Outcome)
		require.Equal(t, "a", run.LevelID)
	}

	limited, err := store.BestTimes("a", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestBestTimesTiesOrderedByDate(t *testing.T) {
	store := setupTestDB(t)

	first, err := store.RecordRun(result("a", maze.HitGoal, 1500))
	require.NoError(t, err)
	second, err := store.RecordRun(result("a", maze.HitGoal, 1500))
	require.NoError(t, err)

	runs, err := store.BestTimes("a", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, first, runs[0].ID)
	require.Equal(t, second, runs[1].ID)
}

func TestRecentRuns(t *testing.T) {
	store := setupTestDB(t)

	var ids []string
	for _, level := range []string{"a", "b", "c"} {
		id, err := store.RecordRun(result(level, maze.HitHole, 100))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := store.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, ids[2], runs[0].ID)
	require.Equal(t, ids[1], runs[1].ID)
}

func TestLevelStats(t *testing.T) {
	store := setupTestDB(t)

	for _, r := range []maze.Result{
		result("a", maze.HitHole, 400),
		result("a", maze.HitHole, 800),
		result("a", maze.HitGoal, 5000),
		result("a", maze.HitGoal, 4200),
	} {
		_, err := store.RecordRun(r)
		require.NoError(t, err)
	}

	stats, err := store.LevelStats("a")
	require.NoError(t, err)
	require.Equal(t, "a", stats.LevelID)
	require.Equal(t, 4, stats.Attempts)
	require.Equal(t, 2, stats.Completions)
	require.Equal(t, 2, stats.Losses)
	require.Equal(t, 4200*time.Millisecond, stats.BestTime)
	require.InDelta(t, 0.5, stats.CompletionRate(), 1e-9)
	require.False(t, stats.LastPlayed.IsZero())
}

func TestLevelStatsEmpty(t *testing.T) {
	store := setupTestDB(t)

	stats, err := store.LevelStats("never-played")
	require.NoError(t, err)
	require.Zero(t, stats.Attempts)
	require.Zero(t, stats.BestTime)
	require.True(t, stats.LastPlayed.IsZero())
	require.Zero(t, stats.CompletionRate())
}

func TestLevelStatsOnlyLosses(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.RecordRun(result("a", maze.HitHole, 400))
	require.NoError(t, err)

	stats, err := store.LevelStats("a")
	require.NoError(t, err)
	require.Equal(t, 1, stats.Losses)
	require.Zero(t, stats.BestTime)
}

func TestLevelsAndClear(t *testing.T) {
	store := setupTestDB(t)

	for _, level := range []string{"zigzag", "first-steps", "zigzag"} {
		_, err := store.RecordRun(result(level, maze.HitGoal, 1000))
		require.NoError(t, err)
	}

	ids, err := store.Levels()
	require.NoError(t, err)
	require.Equal(t, []string{"first-steps", "zigzag"}, ids)

	require.NoError(t, store.ClearRuns("zigzag"))

	ids, err = store.Levels()
	require.NoError(t, err)
	require.Equal(t, []string{"first-steps"}, ids)
}
