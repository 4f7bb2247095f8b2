package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxRounds caps the round counter of every cyclic game so that
// degenerate participants cannot keep a game alive forever.
const DefaultMaxRounds = 50

// ErrEmptyGameType indicates a config without a game type.
var ErrEmptyGameType = errors.New("game type is required")

// ErrNoParticipants indicates a config without participants.
var ErrNoParticipants = errors.New("at least one participant is required")

// ErrDuplicateParticipant indicates two participants sharing an ID.
var ErrDuplicateParticipant = errors.New("duplicate participant id")

// Config describes one game to run.
type Config struct {
	GameType     string
	Participants []Participant
	Options      map[string]any
	MaxRounds    int
	Seed         int64
	Verbose      bool
}

// NormalizeConfig validates and normalizes a game config. The round cap
// defaults to DefaultMaxRounds when unset.
func NormalizeConfig(cfg Config) (Config, error) {
	cfg.GameType = strings.TrimSpace(cfg.GameType)
	if cfg.GameType == "" {
		return Config{}, ErrEmptyGameType
	}
	if len(cfg.Participants) == 0 {
		return Config{}, ErrNoParticipants
	}
	seen := make(map[string]struct{}, len(cfg.Participants))
	for i, p := range cfg.Participants {
		normalized, err := NormalizeParticipant(p)
		if err != nil {
			return Config{}, fmt.Errorf("participant %d: %w", i, err)
		}
		if _, dup := seen[normalized.ID]; dup {
			return Config{}, fmt.Errorf("%w: %s", ErrDuplicateParticipant, normalized.ID)
		}
		seen[normalized.ID] = struct{}{}
		cfg.Participants[i] = normalized
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	return cfg, nil
}

// IntOption reads an integer option, returning fallback when absent or
// not numeric.
func (c Config) IntOption(key string, fallback int) int {
	switch v := c.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}
