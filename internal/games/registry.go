// Package games ties the individual game packages to the engine
// registry.
package games

import (
	"github.com/louisbranch/arena/internal/game/engine"
	"github.com/louisbranch/arena/internal/games/chess"
	"github.com/louisbranch/arena/internal/games/impostor"
	"github.com/louisbranch/arena/internal/games/mafia"
	"github.com/louisbranch/arena/internal/games/poker"
	"github.com/louisbranch/arena/internal/games/secrethitler"
)

// Registry returns a registry with every built-in game installed.
func Registry() *engine.Registry {
	r := engine.NewRegistry()
	for gameType, constructor := range map[string]engine.Constructor{
		chess.GameType:        chess.New,
		poker.GameType:        poker.New,
		mafia.GameType:        mafia.New,
		secrethitler.GameType: secrethitler.New,
		impostor.GameType:     impostor.New,
	} {
		// Register only fails on duplicates, which cannot happen here.
		_ = r.Register(gameType, constructor)
	}
	return r
}
