package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/arena/internal/ratings"
	_ "modernc.org/sqlite"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ratings.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for an empty path")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() {
		_ = sqlDB.Close()
	}()

	for _, table := range []string{"ratings", "game_results"} {
		var name string
		row := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestRatingCreatesDefaultRow(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rating, err := store.Rating(ctx, "model-a")
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if rating != ratings.DefaultRating {
		t.Fatalf("expected default rating %f, got %f", ratings.DefaultRating, rating)
	}

	standings, err := store.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(standings) != 1 || standings[0].Model != "model-a" || standings[0].GamesPlayed != 0 {
		t.Fatalf("expected one fresh row for model-a, got %+v", standings)
	}
}

func TestRecordGameUpdatesStandings(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, model := range []string{"model-a", "model-b"} {
		if _, err := store.Rating(ctx, model); err != nil {
			t.Fatalf("rating %s: %v", model, err)
		}
	}

	updated := ratings.UpdateRatings(
		map[string]float64{"model-a": ratings.DefaultRating, "model-b": ratings.DefaultRating},
		[]string{"model-a"}, []string{"model-b"},
	)
	result := ratings.GameResult{
		GameID:    "g-1",
		GameType:  "chess",
		Players:   []string{"model-a", "model-b"},
		Winners:   []string{"model-a"},
		Losers:    []string{"model-b"},
		Metadata:  map[string]any{"termination": "win"},
		Timestamp: time.Now(),
	}
	if err := store.RecordGame(ctx, updated, result); err != nil {
		t.Fatalf("record game: %v", err)
	}

	standings, err := store.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected two standings, got %d", len(standings))
	}
	if standings[0].Model != "model-a" {
		t.Fatalf("winner should lead the board, got %+v", standings)
	}
	if standings[0].Wins != 1 || standings[0].Losses != 0 || standings[0].GamesPlayed != 1 {
		t.Fatalf("winner counters wrong: %+v", standings[0])
	}
	if standings[1].Wins != 0 || standings[1].Losses != 1 || standings[1].GamesPlayed != 1 {
		t.Fatalf("loser counters wrong: %+v", standings[1])
	}
	if standings[0].Rating <= standings[1].Rating {
		t.Fatalf("winner rating should exceed loser rating: %+v", standings)
	}
}

func TestRecordGameRejectsDuplicateGameID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	result := ratings.GameResult{
		GameID:   "g-dup",
		GameType: "poker",
		Players:  []string{"model-a", "model-b"},
		Winners:  []string{"model-a"},
		Losers:   []string{"model-b"},
	}
	if err := store.RecordGame(ctx, map[string]float64{}, result); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := store.RecordGame(ctx, map[string]float64{}, result); err == nil {
		t.Fatal("expected an error for a duplicate game id")
	}
}

func TestRatingSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	updated := map[string]float64{"model-a": 1540, "model-b": 1460}
	err = store.RecordGame(ctx, updated, ratings.GameResult{
		GameID:   "g-1",
		GameType: "mafia",
		Players:  []string{"model-a", "model-b"},
		Winners:  []string{"model-a"},
		Losers:   []string{"model-b"},
	})
	if err != nil {
		t.Fatalf("record game: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()

	rating, err := reopened.Rating(ctx, "model-a")
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if rating != 1540 {
		t.Fatalf("expected persisted rating 1540, got %f", rating)
	}
}
