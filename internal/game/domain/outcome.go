package domain

import "time"

// Termination labels how a game reached its terminal state. Forced
// terminations (round caps, stuck games) are distinct from natural wins
// so rating consumers can treat them differently.
type Termination string

const (
	// TerminationWin is a natural win condition.
	TerminationWin Termination = "win"
	// TerminationDraw is a natural draw.
	TerminationDraw Termination = "draw"
	// TerminationRoundCap means the safety-valve round cap fired.
	TerminationRoundCap Termination = "round_cap"
	// TerminationAborted means the host cancelled the game or the stuck
	// detector fired after repeated failed turns.
	TerminationAborted Termination = "aborted"
)

// MetadataTermination is the metadata key carrying the Termination label.
const MetadataTermination = "termination"

// Outcome is the canonical terminal result of a game: enough for rating
// updates and transcripts without re-inspecting engine state.
type Outcome struct {
	GameID    string
	GameType  string
	WinnerIDs []string
	LoserIDs  []string
	Ranking   []string
	Metadata  map[string]any
	Timestamp time.Time
}

// Draw reports whether nobody won.
func (o Outcome) Draw() bool {
	return len(o.WinnerIDs) == 0
}

// Aborted reports whether the game terminated without playing out.
func (o Outcome) Aborted() bool {
	t, _ := o.Metadata[MetadataTermination].(string)
	return Termination(t) == TerminationAborted
}
