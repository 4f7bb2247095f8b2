// Package arena implements the arena command line: play a single game,
// run a round-robin tournament, print the rating leaderboard, or replay
// a stored transcript.
package arena

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/arena/internal/game/domain"
	"github.com/louisbranch/arena/internal/game/engine"
	"github.com/louisbranch/arena/internal/game/event"
	"github.com/louisbranch/arena/internal/games"
	"github.com/louisbranch/arena/internal/oracle"
	entrypoint "github.com/louisbranch/arena/internal/platform/cmd"
	"github.com/louisbranch/arena/internal/platform/random"
	"github.com/louisbranch/arena/internal/ratings"
	ratingsqlite "github.com/louisbranch/arena/internal/ratings/sqlite"
	"github.com/louisbranch/arena/internal/tournament"
	"github.com/louisbranch/arena/internal/transcript"
)

// Config holds arena CLI configuration shared by all subcommands.
type Config struct {
	RatingsPath   string `env:"ARENA_RATINGS_PATH" envDefault:"data/ratings.db"`
	TranscriptDir string `env:"ARENA_TRANSCRIPT_DIR" envDefault:"data/logs"`
	ResponsesURL  string `env:"ARENA_RESPONSES_URL"`
	APIKey        string `env:"ARENA_API_KEY"`
	Verbose       bool   `env:"ARENA_VERBOSE"`
}

const usage = `usage: arena <command> [flags]

commands:
  play         play one game between models
  tournament   run a round-robin tournament
  leaderboard  print the rating table
  replay       print a stored game transcript
`

// Main dispatches to a subcommand. Args excludes the program name.
func Main(ctx context.Context, args []string, stdout io.Writer) error {
	if err := entrypoint.LoadDotenv(); err != nil {
		return err
	}
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("a command is required")
	}

	command, rest := args[0], args[1:]
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArena, func(ctx context.Context) error {
		switch command {
		case "play":
			return runPlay(ctx, cfg, rest, stdout)
		case "tournament":
			return runTournament(ctx, cfg, rest, stdout)
		case "leaderboard":
			return runLeaderboard(ctx, cfg, rest, stdout)
		case "replay":
			return runReplay(ctx, cfg, rest, stdout)
		default:
			fmt.Fprint(stdout, usage)
			return fmt.Errorf("unknown command %q", command)
		}
	})
}

// modelList is a repeatable -m flag.
type modelList []string

func (m *modelList) String() string { return strings.Join(*m, ",") }

func (m *modelList) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	*m = append(*m, value)
	return nil
}

// participantsFor builds one seat per model. Models entered more than
// once get numeric suffixes so participant IDs stay unique.
func participantsFor(models []string) []domain.Participant {
	total := make(map[string]int, len(models))
	for _, model := range models {
		total[model]++
	}
	seen := make(map[string]int, len(models))
	participants := make([]domain.Participant, 0, len(models))
	for _, model := range models {
		id := model
		name := shortName(model)
		if total[model] > 1 {
			seen[model]++
			id = fmt.Sprintf("%s#%d", model, seen[model])
			name = fmt.Sprintf("%s#%d", shortName(model), seen[model])
		}
		participants = append(participants, domain.Participant{ID: id, Name: name, Model: model})
	}
	return participants
}

func shortName(model string) string {
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		return model[idx+1:]
	}
	return model
}

func openStore(cfg Config) (ratings.Store, error) {
	if dir := filepath.Dir(cfg.RatingsPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ratings directory: %w", err)
		}
	}
	return ratingsqlite.Open(cfg.RatingsPath)
}

func newOracle(cfg Config) (oracle.Oracle, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("ARENA_API_KEY is required to query models")
	}
	return oracle.NewLLM(oracle.LLMConfig{
		ResponsesURL: cfg.ResponsesURL,
		APIKey:       cfg.APIKey,
	}), nil
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	if !verbose {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func runPlay(ctx context.Context, cfg Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	var models modelList
	gameType := fs.String("game", "", "game type to play")
	seed := fs.Int64("seed", 0, "deterministic seed (0 picks a random one)")
	maxRounds := fs.Int("max-rounds", 0, "round cap (0 uses the default)")
	verbose := fs.Bool("v", cfg.Verbose, "log every phase and action")
	fs.Var(&models, "m", "model to seat (repeatable)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}
	if *gameType == "" {
		return fmt.Errorf("-game is required")
	}
	if len(models) == 0 {
		return fmt.Errorf("at least one -m model is required")
	}
	if *seed == 0 {
		var err error
		if *seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	decider, err := newOracle(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()
	writer, err := transcript.NewWriter(cfg.TranscriptDir)
	if err != nil {
		return err
	}

	gameCfg := domain.Config{
		GameType:     *gameType,
		Participants: participantsFor(models),
		MaxRounds:    *maxRounds,
		Seed:         *seed,
		Verbose:      *verbose,
	}
	game, err := games.Registry().New(gameCfg, rand.New(rand.NewSource(*seed)))
	if err != nil {
		return err
	}
	runner, err := engine.NewRunner(gameCfg, game, decider, engine.Options{
		Sinks:  []event.Sink{writer},
		Logger: newLogger(*verbose),
	})
	if err != nil {
		return err
	}

	outcome, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if err := recordOutcome(ctx, store, gameCfg.Participants, outcome); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Game %s (%s) finished.\n", outcome.GameID, outcome.GameType)
	fmt.Fprintf(stdout, "  Winners: %s\n", idList(outcome.WinnerIDs))
	fmt.Fprintf(stdout, "  Losers:  %s\n", idList(outcome.LoserIDs))
	if reason, ok := outcome.Metadata["reason"].(string); ok && reason != "" {
		fmt.Fprintf(stdout, "  Reason:  %s\n", reason)
	}
	fmt.Fprintf(stdout, "  Transcript: %s\n", filepath.Join(cfg.TranscriptDir, outcome.GameID+".json"))
	return nil
}

// recordOutcome maps participant IDs back to models and updates the
// rating store. Self-play (one model on multiple seats) and aborted
// games are recorded in the history but do not move ratings.
func recordOutcome(ctx context.Context, store ratings.Store, participants []domain.Participant, outcome domain.Outcome) error {
	modelFor := make(map[string]string, len(participants))
	uniqueModels := make(map[string]bool, len(participants))
	for _, p := range participants {
		modelFor[p.ID] = p.Model
		uniqueModels[p.Model] = true
	}
	toModels := func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, modelFor[id])
		}
		return out
	}
	winners := toModels(outcome.WinnerIDs)
	losers := toModels(outcome.LoserIDs)

	updated := map[string]float64{}
	if !outcome.Aborted() && len(uniqueModels) == len(participants) {
		current := make(map[string]float64, len(participants))
		for model := range uniqueModels {
			rating, err := store.Rating(ctx, model)
			if err != nil {
				return fmt.Errorf("load rating for %s: %w", model, err)
			}
			current[model] = rating
		}
		updated = ratings.UpdateRatings(current, winners, losers)
	}

	return store.RecordGame(ctx, updated, ratings.GameResult{
		GameID:    outcome.GameID,
		GameType:  outcome.GameType,
		Players:   append(winners, losers...),
		Winners:   winners,
		Losers:    losers,
		Metadata:  outcome.Metadata,
		Timestamp: outcome.Timestamp,
	})
}

func runTournament(ctx context.Context, cfg Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	var models modelList
	gameType := fs.String("game", "", "game type to play")
	gamesPer := fs.Int("games", 0, "games per matchup (0 uses the default)")
	players := fs.Int("players", 0, "seats per game (0 uses the game's default)")
	concurrency := fs.Int("concurrency", 0, "parallel games (0 uses the default)")
	seed := fs.Int64("seed", 0, "base seed (0 picks a random one)")
	maxRounds := fs.Int("max-rounds", 0, "round cap per game (0 uses the default)")
	verbose := fs.Bool("v", cfg.Verbose, "log every phase and action")
	fs.Var(&models, "m", "model to enter (repeatable)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}
	if *gameType == "" {
		return fmt.Errorf("-game is required")
	}
	if len(models) < 2 {
		return fmt.Errorf("at least two -m models are required")
	}
	if *seed == 0 {
		var err error
		if *seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	decider, err := newOracle(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()
	writer, err := transcript.NewWriter(cfg.TranscriptDir)
	if err != nil {
		return err
	}

	runner, err := tournament.New(games.Registry(), decider, store, tournament.Options{
		GamesPerMatchup: *gamesPer,
		PlayersPerGame:  *players,
		Concurrency:     *concurrency,
		MaxRounds:       *maxRounds,
		Seed:            *seed,
		Logger:          newLogger(*verbose),
		Sinks:           []event.Sink{writer},
	})
	if err != nil {
		return err
	}

	outcomes, err := runner.RunRoundRobin(ctx, *gameType, models)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Played %d games of %s.\n\n", len(outcomes), *gameType)
	return printLeaderboard(ctx, store, stdout)
}

func runLeaderboard(ctx context.Context, cfg Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("leaderboard", flag.ContinueOnError)
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()
	return printLeaderboard(ctx, store, stdout)
}

func printLeaderboard(ctx context.Context, store ratings.Store, stdout io.Writer) error {
	standings, err := store.Leaderboard(ctx)
	if err != nil {
		return err
	}
	if len(standings) == 0 {
		fmt.Fprintln(stdout, "No rated models yet.")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tMODEL\tRATING\tGAMES\tWINS\tLOSSES")
	for i, s := range standings {
		fmt.Fprintf(w, "%d\t%s\t%.0f\t%d\t%d\t%d\n", i+1, s.Model, s.Rating, s.GamesPlayed, s.Wins, s.Losses)
	}
	return w.Flush()
}

func runReplay(_ context.Context, cfg Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	gameID := fs.String("id", "", "game id to replay")
	raw := fs.Bool("json", false, "print the raw JSON transcript")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}
	if *gameID == "" {
		return fmt.Errorf("-id is required")
	}

	data, err := transcript.Read(cfg.TranscriptDir, *gameID)
	if err != nil {
		return err
	}
	if *raw {
		_, err = stdout.Write(data)
		return err
	}
	text, err := transcript.Render(*gameID, data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, text)
	return err
}

func idList(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
