// Package ratings implements pairwise Elo ratings for multiplayer
// games. Each model carries one rating across all game types; a game's
// outcome adjusts every participant against every opponent, with the
// accumulated delta averaged over the opponent count.
package ratings

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	// DefaultRating is the rating assigned to unrated models.
	DefaultRating = 1500.0
	// KFactor bounds the rating swing of a single game.
	KFactor = 32.0
)

// ErrNotFound indicates a model with no rating row.
var ErrNotFound = errors.New("model not rated")

// ExpectedScore is the standard Elo win expectancy of a against b.
func ExpectedScore(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}

// UpdateRatings computes post-game ratings for every listed model.
// Winners score 1.0 against losers, losers 0.0 against winners, and
// any same-result pair (including draws) scores 0.5. All expectations
// are computed against the pre-game ratings; missing entries in
// current fall back to DefaultRating. Fewer than two players is a
// no-op.
func UpdateRatings(current map[string]float64, winners, losers []string) map[string]float64 {
	updated := make(map[string]float64, len(current))
	for model, rating := range current {
		updated[model] = rating
	}

	players := append(append([]string(nil), winners...), losers...)
	if len(players) < 2 {
		return updated
	}

	winner := make(map[string]bool, len(winners))
	for _, model := range winners {
		winner[model] = true
	}
	rating := func(model string) float64 {
		if r, ok := current[model]; ok {
			return r
		}
		return DefaultRating
	}

	for i, a := range players {
		delta := 0.0
		for j, b := range players {
			if i == j {
				continue
			}
			expected := ExpectedScore(rating(a), rating(b))
			actual := 0.5
			switch {
			case winner[a] && !winner[b]:
				actual = 1.0
			case !winner[a] && winner[b]:
				actual = 0.0
			}
			delta += KFactor * (actual - expected)
		}
		updated[a] = rating(a) + delta/float64(len(players)-1)
	}
	return updated
}

// Standing is one leaderboard row.
type Standing struct {
	Model       string
	Rating      float64
	GamesPlayed int
	Wins        int
	Losses      int
	LastUpdated time.Time
}

// GameResult is the persisted record of one finished game. Players,
// Winners and Losers hold model names, not participant IDs.
type GameResult struct {
	GameID    string
	GameType  string
	Players   []string
	Winners   []string
	Losers    []string
	Metadata  map[string]any
	Timestamp time.Time
}

// Store persists ratings and game results.
type Store interface {
	// Rating returns the model's current rating, creating a default
	// row when the model has never played.
	Rating(ctx context.Context, model string) (float64, error)
	// RecordGame applies post-game ratings and appends the result to
	// the game history in one transaction.
	RecordGame(ctx context.Context, updated map[string]float64, result GameResult) error
	// Leaderboard lists all rated models, best first.
	Leaderboard(ctx context.Context) ([]Standing, error)
	Close() error
}
