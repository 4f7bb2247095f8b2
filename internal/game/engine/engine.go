// Package engine drives phase-based games: it owns the turn loop, the
// two turn-taking disciplines, oracle consultation with default
// substitution, safety valves and the event stream.
package engine

import (
	"math/rand"

	"github.com/louisbranch/arena/internal/game/domain"
)

// Game is the capability interface each game family implements. The
// engine never reaches into game state directly; everything flows
// through these methods and their explicit return values.
//
// A Game instance is owned by exactly one Runner and is never shared,
// so implementations need no internal locking.
type Game interface {
	// Setup assigns roles, shuffles decks and allocates starting
	// resources. Called exactly once before the first phase.
	Setup() error

	// NextPhase computes the upcoming phase as a pure function of the
	// current state. A phase with kind PhaseGameOver ends the loop.
	NextPhase() (domain.Phase, error)

	// LegalActions returns the action grammar for the participant in
	// the given phase.
	LegalActions(participantID string, phase domain.Phase) []domain.ActionSchema

	// Apply validates and applies one action, returning its outcome.
	// Errors wrapping domain.ErrIllegalAction or domain.ErrMalformedAction
	// are recoverable; anything else aborts the game.
	Apply(participantID string, action domain.Action) (domain.ActionOutcome, error)

	// View projects the state visible to one participant. It must be
	// pure: the same state and participant always yield the same view.
	View(participantID string) string

	// DefaultAction is the substitute applied when a participant's
	// oracle fails or keeps producing illegal actions (fold, skip,
	// pass). It must be legal in the given phase.
	DefaultAction(participantID string, phase domain.Phase) domain.Action

	// Terminal reports the final outcome once a win condition, draw or
	// round cap has been reached. Checked after every applied action.
	Terminal() (domain.Outcome, bool)
}

// Constructor builds a game engine from a normalized config and a
// seeded random source. All randomness (shuffles, role draws) must come
// from rng so that a seed fully determines the game.
type Constructor func(cfg domain.Config, rng *rand.Rand) (Game, error)
