// Package tournament schedules round-robin matchups between models and
// keeps the rating store current. Every combination of the entered
// models plays a configurable number of games; independent games run in
// parallel while rating updates stay serialized.
package tournament

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/arena/internal/game/domain"
	"github.com/louisbranch/arena/internal/game/engine"
	"github.com/louisbranch/arena/internal/game/event"
	"github.com/louisbranch/arena/internal/oracle"
	"github.com/louisbranch/arena/internal/ratings"
)

// defaultGamesPerMatchup plays each matchup this many times unless
// overridden.
const defaultGamesPerMatchup = 3

// defaultConcurrency bounds how many games run at once.
const defaultConcurrency = 4

// defaultPlayers is the seat count used per game type when the caller
// does not pin one.
var defaultPlayers = map[string]int{
	"chess":         2,
	"poker":         2,
	"mafia":         7,
	"secret_hitler": 7,
	"impostor":      6,
}

// Options tunes a tournament run. Zero values select defaults.
type Options struct {
	GamesPerMatchup int
	PlayersPerGame  int
	Concurrency     int
	MaxRounds       int
	Seed            int64
	Logger          logrus.FieldLogger
	Sinks           []event.Sink
}

// Runner plays round-robin tournaments.
type Runner struct {
	registry *engine.Registry
	decider  oracle.Oracle
	store    ratings.Store
	opts     Options

	mu sync.Mutex // serializes read-update-write rating cycles
}

// New builds a tournament runner. The store may be nil, in which case
// outcomes are returned but nothing is persisted.
func New(registry *engine.Registry, decider oracle.Oracle, store ratings.Store, opts Options) (*Runner, error) {
	if registry == nil {
		return nil, fmt.Errorf("game registry is required")
	}
	if decider == nil {
		return nil, fmt.Errorf("decision oracle is required")
	}
	if opts.GamesPerMatchup <= 0 {
		opts.GamesPerMatchup = defaultGamesPerMatchup
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &Runner{registry: registry, decider: decider, store: store, opts: opts}, nil
}

// RunRoundRobin plays every combination of the given models at the
// game's seat count, GamesPerMatchup times each. Outcomes are returned
// in no particular order; the rating store is updated as each game
// finishes.
func (r *Runner) RunRoundRobin(ctx context.Context, gameType string, models []string) ([]domain.Outcome, error) {
	gameType = strings.TrimSpace(gameType)
	if gameType == "" {
		return nil, fmt.Errorf("game type is required")
	}

	seats := r.opts.PlayersPerGame
	if seats <= 0 {
		seats = defaultPlayers[gameType]
	}
	if seats <= 0 {
		return nil, fmt.Errorf("no default seat count for %s; set PlayersPerGame", gameType)
	}
	if len(models) < seats {
		return nil, fmt.Errorf("%s needs %d models per game, got %d", gameType, seats, len(models))
	}

	matchups := combinations(models, seats)
	log := r.opts.Logger.WithFields(logrus.Fields{"game_type": gameType, "matchups": len(matchups)})
	log.Info("tournament started")

	var (
		outcomeMu sync.Mutex
		outcomes  []domain.Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	gameSeed := r.opts.Seed
	for _, matchup := range matchups {
		for i := 0; i < r.opts.GamesPerMatchup; i++ {
			matchup := matchup
			seed := gameSeed
			gameSeed++
			g.Go(func() error {
				outcome, err := r.playGame(gctx, gameType, matchup, seed)
				if err != nil {
					return err
				}
				if err := r.recordOutcome(gctx, outcome); err != nil {
					return err
				}
				outcomeMu.Lock()
				outcomes = append(outcomes, outcome)
				outcomeMu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.WithField("games", len(outcomes)).Info("tournament finished")
	return outcomes, nil
}

// playGame runs a single game between the matchup's models. Each
// participant's ID is its model name; matchups never repeat a model.
func (r *Runner) playGame(ctx context.Context, gameType string, matchup []string, seed int64) (domain.Outcome, error) {
	participants := make([]domain.Participant, 0, len(matchup))
	for _, model := range matchup {
		participants = append(participants, domain.Participant{
			ID:    model,
			Name:  displayName(model),
			Model: model,
		})
	}
	cfg := domain.Config{
		GameType:     gameType,
		Participants: participants,
		MaxRounds:    r.opts.MaxRounds,
		Seed:         seed,
	}

	game, err := r.registry.New(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("build %s engine: %w", gameType, err)
	}
	runner, err := engine.NewRunner(cfg, game, r.decider, engine.Options{
		Sinks:  r.opts.Sinks,
		Logger: r.opts.Logger,
	})
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("build runner: %w", err)
	}
	return runner.Run(ctx)
}

// recordOutcome applies one game's result to the rating store. Aborted
// games are recorded in the history but do not move ratings; the fault
// lies with the harness, not the models.
func (r *Runner) recordOutcome(ctx context.Context, outcome domain.Outcome) error {
	if r.store == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	players := append(append([]string(nil), outcome.WinnerIDs...), outcome.LoserIDs...)
	updated := map[string]float64{}
	if !outcome.Aborted() {
		current := make(map[string]float64, len(players))
		for _, model := range players {
			rating, err := r.store.Rating(ctx, model)
			if err != nil {
				return fmt.Errorf("load rating for %s: %w", model, err)
			}
			current[model] = rating
		}
		updated = ratings.UpdateRatings(current, outcome.WinnerIDs, outcome.LoserIDs)
	}

	result := ratings.GameResult{
		GameID:    outcome.GameID,
		GameType:  outcome.GameType,
		Players:   players,
		Winners:   outcome.WinnerIDs,
		Losers:    outcome.LoserIDs,
		Metadata:  outcome.Metadata,
		Timestamp: outcome.Timestamp,
	}
	if err := r.store.RecordGame(ctx, updated, result); err != nil {
		return fmt.Errorf("record game %s: %w", outcome.GameID, err)
	}
	return nil
}

// displayName shortens provider-prefixed model names for logs and
// views, e.g. "openai/gpt-x" becomes "gpt-x".
func displayName(model string) string {
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		return model[idx+1:]
	}
	return model
}

// combinations lists every k-subset of models, preserving the input
// order within each subset.
func combinations(models []string, k int) [][]string {
	sorted := append([]string(nil), models...)
	sort.Strings(sorted)

	var out [][]string
	var walk func(start int, picked []string)
	walk = func(start int, picked []string) {
		if len(picked) == k {
			out = append(out, append([]string(nil), picked...))
			return
		}
		for i := start; i <= len(sorted)-(k-len(picked)); i++ {
			walk(i+1, append(picked, sorted[i]))
		}
	}
	walk(0, nil)
	return out
}
