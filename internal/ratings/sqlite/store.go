// Package sqlite provides a SQLite-backed rating store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/arena/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/arena/internal/ratings"
	"github.com/louisbranch/arena/internal/ratings/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists ratings and game results in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite rating store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Rating returns the model's current rating, creating a default row
// when the model has never played.
func (s *Store) Rating(ctx context.Context, model string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return 0, fmt.Errorf("model is required")
	}

	if err := s.ensureModel(ctx, model); err != nil {
		return 0, err
	}

	var rating float64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT rating FROM ratings WHERE model = ?`, model)
	if err := row.Scan(&rating); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ratings.ErrNotFound
		}
		return 0, fmt.Errorf("get rating: %w", err)
	}
	return rating, nil
}

// RecordGame applies post-game ratings and appends the result to the
// game history in one transaction. Draws count as losses for every
// participant.
func (s *Store) RecordGame(ctx context.Context, updated map[string]float64, result ratings.GameResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gameID := strings.TrimSpace(result.GameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	for _, model := range result.Players {
		if err := s.ensureModel(ctx, model); err != nil {
			return err
		}
	}

	timestamp := result.Timestamp.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	players, err := json.Marshal(result.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	winners, err := json.Marshal(result.Winners)
	if err != nil {
		return fmt.Errorf("marshal winners: %w", err)
	}
	losers, err := json.Marshal(result.Losers)
	if err != nil {
		return fmt.Errorf("marshal losers: %w", err)
	}
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	winner := make(map[string]bool, len(result.Winners))
	for _, model := range result.Winners {
		winner[model] = true
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record game: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for model, rating := range updated {
		wins := 0
		losses := 1
		if winner[model] {
			wins, losses = 1, 0
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE ratings SET
			   rating = ?,
			   games_played = games_played + 1,
			   wins = wins + ?,
			   losses = losses + ?,
			   last_updated = ?
			 WHERE model = ?`,
			rating,
			wins,
			losses,
			toMillis(timestamp),
			model,
		); err != nil {
			return fmt.Errorf("update rating for %s: %w", model, err)
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO game_results (game_id, game_type, players, winners, losers, metadata, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gameID,
		result.GameType,
		string(players),
		string(winners),
		string(losers),
		string(metadata),
		toMillis(timestamp),
	); err != nil {
		if isGameResultUniqueViolation(err) {
			return fmt.Errorf("game %s already recorded", gameID)
		}
		return fmt.Errorf("insert game result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record game: %w", err)
	}
	return nil
}

// Leaderboard lists all rated models, best first.
func (s *Store) Leaderboard(ctx context.Context) ([]ratings.Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT model, rating, games_played, wins, losses, last_updated
		   FROM ratings
		  ORDER BY rating DESC, model ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var standings []ratings.Standing
	for rows.Next() {
		var standing ratings.Standing
		var lastUpdated int64
		if err := rows.Scan(
			&standing.Model,
			&standing.Rating,
			&standing.GamesPlayed,
			&standing.Wins,
			&standing.Losses,
			&lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("list ratings: %w", err)
		}
		standing.LastUpdated = fromMillis(lastUpdated)
		standings = append(standings, standing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return standings, nil
}

func (s *Store) ensureModel(ctx context.Context, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model is required")
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO ratings (model, rating, last_updated) VALUES (?, ?, ?)`,
		model,
		ratings.DefaultRating,
		toMillis(time.Now()),
	); err != nil {
		return fmt.Errorf("ensure rating row for %s: %w", model, err)
	}
	return nil
}

func isGameResultUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "game_results.game_id")
}

var _ ratings.Store = (*Store)(nil)
