package engine

import "github.com/louisbranch/arena/internal/game/domain"

type participantPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

type startedPayload struct {
	GameType     string               `json:"game_type"`
	Participants []participantPayload `json:"participants"`
	Seed         int64                `json:"seed"`
	MaxRounds    int                  `json:"max_rounds"`
}

type phasePayload struct {
	Kind        domain.PhaseKind `json:"kind"`
	Label       string           `json:"label,omitempty"`
	Round       int              `json:"round"`
	Description string           `json:"description"`
	ActiveIDs   []string         `json:"active_ids,omitempty"`
}

type actionPayload struct {
	Action    string         `json:"action"`
	Args      map[string]any `json:"args,omitempty"`
	Result    string         `json:"result"`
	Success   bool           `json:"success"`
	Defaulted bool           `json:"defaulted,omitempty"`
	Code      domain.Code    `json:"code,omitempty"`
	VisibleTo []string       `json:"visible_to,omitempty"`
}

type endedPayload struct {
	WinnerIDs []string       `json:"winner_ids"`
	LoserIDs  []string       `json:"loser_ids"`
	Ranking   []string       `json:"ranking,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Code      domain.Code    `json:"code,omitempty"`
}
