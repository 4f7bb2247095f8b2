package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/louisbranch/arena/internal/game/domain"
)

// ErrUnknownGameType indicates a game type with no registered constructor.
var ErrUnknownGameType = errors.New("unknown game type")

// ErrDuplicateGameType indicates a game type registered twice.
var ErrDuplicateGameType = errors.New("game type already registered")

// Registry maps game types to constructors. It is populated once at
// process start and treated as read-only afterwards; Register is not
// safe for concurrent use with New.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor for a game type.
func (r *Registry) Register(gameType string, c Constructor) error {
	if _, exists := r.constructors[gameType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGameType, gameType)
	}
	r.constructors[gameType] = c
	return nil
}

// New builds a game engine for the config's game type. The config is
// normalized before it reaches the constructor, so games always see
// trimmed fields and a concrete round cap.
func (r *Registry) New(cfg domain.Config, rng *rand.Rand) (Game, error) {
	c, ok := r.constructors[strings.TrimSpace(cfg.GameType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameType, cfg.GameType)
	}
	cfg, err := domain.NormalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	return c(cfg, rng)
}

// Types lists the registered game types in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.constructors))
	for t := range r.constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
