// Package oracle defines the external decision interface consulted for
// every participant turn, plus adapters for LLM-backed and scripted
// deciders.
package oracle

import (
	"context"
	"errors"

	"github.com/louisbranch/arena/internal/game/domain"
)

// ErrNoDecision indicates the oracle could not produce an action. The
// engine substitutes the game's default action and records it.
var ErrNoDecision = errors.New("oracle produced no decision")

// Request carries everything a decider may observe for one turn: the
// participant's filtered view, the phase, prior statements within a
// sequential phase, and the legal action schemas.
type Request struct {
	GameID        string
	GameType      string
	ParticipantID string
	Model         string
	Phase         domain.Phase
	View          string
	Discussion    []string
	Schemas       []domain.ActionSchema
}

// Oracle selects an Action for an eligible actor given its view and
// legal action set. Implementations may block on network calls; they
// must honor ctx cancellation.
type Oracle interface {
	Decide(ctx context.Context, req Request) (domain.Action, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, req Request) (domain.Action, error)

// Decide implements Oracle.
func (f Func) Decide(ctx context.Context, req Request) (domain.Action, error) {
	return f(ctx, req)
}
