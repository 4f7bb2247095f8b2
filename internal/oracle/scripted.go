package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/louisbranch/arena/internal/game/domain"
)

// Scripted replays a fixed queue of actions per participant. Once a
// participant's queue is exhausted it returns ErrNoDecision, which the
// engine turns into the game's default action.
type Scripted struct {
	mu     sync.Mutex
	queues map[string][]domain.Action
}

// NewScripted builds a scripted oracle from per-participant action
// queues.
func NewScripted(queues map[string][]domain.Action) *Scripted {
	copied := make(map[string][]domain.Action, len(queues))
	for id, actions := range queues {
		copied[id] = append([]domain.Action(nil), actions...)
	}
	return &Scripted{queues: copied}
}

// Decide pops the next queued action for the participant.
func (s *Scripted) Decide(_ context.Context, req Request) (domain.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[req.ParticipantID]
	if len(queue) == 0 {
		return domain.Action{}, fmt.Errorf("%w: no scripted action for %s", ErrNoDecision, req.ParticipantID)
	}
	next := queue[0]
	s.queues[req.ParticipantID] = queue[1:]
	return next, nil
}

// Silent always declines to decide, forcing the engine's default action
// on every turn. Useful for safety-valve and termination testing.
type Silent struct{}

// Decide implements Oracle by always returning ErrNoDecision.
func (Silent) Decide(context.Context, Request) (domain.Action, error) {
	return domain.Action{}, ErrNoDecision
}
