// Package event defines the ordered event stream a running game emits
// for transcript writers and other external consumers.
package event

import (
	"context"
	"time"
)

// Type identifies the kind of event using dot-namespaced strings.
type Type string

const (
	// TypeGameStarted is emitted once, before the first phase.
	TypeGameStarted Type = "game.started"
	// TypePhaseChanged is emitted when the engine enters a new phase.
	TypePhaseChanged Type = "phase.changed"
	// TypeActionApplied is emitted after each participant action.
	TypeActionApplied Type = "action.applied"
	// TypeGameEnded is emitted once, with the final outcome payload.
	TypeGameEnded Type = "game.ended"
)

// Event is one entry in a game's ordered event stream. Seq starts at 1
// and increases by one per event; the emitter assigns it on append.
type Event struct {
	GameID      string
	Seq         uint64
	Timestamp   time.Time
	Type        Type
	ActorID     string
	PayloadJSON []byte
}

// Sink consumes game events in order. Implementations must not retain
// the payload slice beyond the call.
type Sink interface {
	HandleEvent(ctx context.Context, evt Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, evt Event) error

// HandleEvent implements Sink.
func (f SinkFunc) HandleEvent(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}
