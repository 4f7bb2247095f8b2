package domain

// PhaseKind classifies a phase by its turn-taking discipline.
type PhaseKind string

const (
	// PhaseSetup covers initial role assignment and resource allocation.
	PhaseSetup PhaseKind = "SETUP"
	// PhaseDiscussion is a sequential phase where each actor sees the
	// statements of actors that spoke before it in the same phase.
	PhaseDiscussion PhaseKind = "DISCUSSION"
	// PhaseVoting is a simultaneous phase; every actor decides against
	// the same pre-phase snapshot and no vote is visible until tallied.
	PhaseVoting PhaseKind = "VOTING"
	// PhaseAction is a game move phase, sequential or simultaneous
	// depending on how many actors the phase names.
	PhaseAction PhaseKind = "ACTION"
	// PhaseResolution applies game logic with no actor input.
	PhaseResolution PhaseKind = "RESOLUTION"
	// PhaseGameOver marks the terminal phase.
	PhaseGameOver PhaseKind = "GAME_OVER"
)

// Phase identifies one step of a running game.
//
// Label carries the game-specific sub-phase (for example "nomination" or
// "president_discard") when the kind alone is not specific enough.
// Transitions are a pure function of the current phase and game state.
type Phase struct {
	Kind        PhaseKind
	Label       string
	Round       int
	Description string
	ActiveIDs   []string
}

// Terminal reports whether the phase ends the game.
func (p Phase) Terminal() bool {
	return p.Kind == PhaseGameOver
}
