package domain

import (
	"errors"
	"strings"
)

// ErrEmptyParticipantID indicates a participant without a stable ID.
var ErrEmptyParticipantID = errors.New("participant id is required")

// ErrEmptyModel indicates a participant without a model identifier.
var ErrEmptyModel = errors.New("participant model is required")

// Participant is one seat in a game. The ID is stable for the lifetime
// of the game; Model names the decision oracle backing the seat.
type Participant struct {
	ID    string
	Name  string
	Model string
}

// NormalizeParticipant trims fields and validates required ones. The
// display name falls back to the ID when empty.
func NormalizeParticipant(p Participant) (Participant, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Model = strings.TrimSpace(p.Model)
	if p.ID == "" {
		return Participant{}, ErrEmptyParticipantID
	}
	if p.Model == "" {
		return Participant{}, ErrEmptyModel
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	return p, nil
}

// Role describes a participant's allegiance. Hidden roles are excluded
// from other participants' views until a resolution event reveals them.
type Role struct {
	Name        string
	Team        string
	Description string
	Hidden      bool
}
