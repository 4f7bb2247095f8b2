// Package transcript persists finished games to disk. A Writer is an
// event sink that buffers each game's event stream in memory and, when
// the game ends, writes two files into its directory: <game_id>.json
// with the full machine-readable stream and <game_id>.txt with a
// human-readable play-by-play.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/arena/internal/game/event"
)

// Writer buffers event streams per game and flushes them on game end.
// Safe for concurrent use by multiple game runners.
type Writer struct {
	dir string

	mu      sync.Mutex
	pending map[string][]record
}

type record struct {
	Seq       uint64          `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Type      event.Type      `json:"type"`
	ActorID   string          `json:"actor_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// NewWriter creates the transcript directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("transcript directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	return &Writer{dir: dir, pending: make(map[string][]record)}, nil
}

// HandleEvent implements event.Sink.
func (w *Writer) HandleEvent(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if evt.GameID == "" {
		return fmt.Errorf("event without game id")
	}

	rec := record{
		Seq:       evt.Seq,
		Timestamp: evt.Timestamp.UTC(),
		Type:      evt.Type,
		ActorID:   evt.ActorID,
		Payload:   json.RawMessage(append([]byte(nil), evt.PayloadJSON...)),
	}

	w.mu.Lock()
	w.pending[evt.GameID] = append(w.pending[evt.GameID], rec)
	if evt.Type != event.TypeGameEnded {
		w.mu.Unlock()
		return nil
	}
	records := w.pending[evt.GameID]
	delete(w.pending, evt.GameID)
	w.mu.Unlock()

	return w.flush(evt.GameID, records)
}

func (w *Writer) flush(gameID string, records []record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript %s: %w", gameID, err)
	}
	jsonPath := filepath.Join(w.dir, gameID+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", gameID, err)
	}

	txtPath := filepath.Join(w.dir, gameID+".txt")
	if err := os.WriteFile(txtPath, []byte(render(gameID, records)), 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", gameID, err)
	}
	return nil
}

// Payload shapes mirror the JSON the engine emits; unknown fields are
// ignored so older transcripts stay renderable.
type startedDetail struct {
	GameType     string `json:"game_type"`
	Participants []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"participants"`
}

type phaseDetail struct {
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	Round       int    `json:"round"`
	Description string `json:"description"`
}

type actionDetail struct {
	Action    string `json:"action"`
	Result    string `json:"result"`
	Defaulted bool   `json:"defaulted"`
}

type endedDetail struct {
	WinnerIDs []string       `json:"winner_ids"`
	LoserIDs  []string       `json:"loser_ids"`
	Metadata  map[string]any `json:"metadata"`
}

func render(gameID string, records []record) string {
	var b strings.Builder
	for _, rec := range records {
		switch rec.Type {
		case event.TypeGameStarted:
			var detail startedDetail
			if err := json.Unmarshal(rec.Payload, &detail); err != nil {
				continue
			}
			fmt.Fprintf(&b, "=== GAME %s (%s) ===\n", gameID, detail.GameType)
			for _, p := range detail.Participants {
				fmt.Fprintf(&b, "  Player: %s (%s)\n", p.Name, p.Model)
			}

		case event.TypePhaseChanged:
			var detail phaseDetail
			if err := json.Unmarshal(rec.Payload, &detail); err != nil {
				continue
			}
			name := detail.Label
			if name == "" {
				name = detail.Kind
			}
			fmt.Fprintf(&b, "\n--- %s (round %d) ---\n", name, detail.Round)
			if detail.Description != "" {
				fmt.Fprintf(&b, "    %s\n", detail.Description)
			}

		case event.TypeActionApplied:
			var detail actionDetail
			if err := json.Unmarshal(rec.Payload, &detail); err != nil {
				continue
			}
			suffix := ""
			if detail.Defaulted {
				suffix = " (defaulted)"
			}
			fmt.Fprintf(&b, "  [%s] %s%s: %s\n", rec.ActorID, detail.Action, suffix, detail.Result)

		case event.TypeGameEnded:
			var detail endedDetail
			if err := json.Unmarshal(rec.Payload, &detail); err != nil {
				continue
			}
			b.WriteString("\n=== GAME OVER ===\n")
			fmt.Fprintf(&b, "  Winners: %s\n", idList(detail.WinnerIDs))
			fmt.Fprintf(&b, "  Losers:  %s\n", idList(detail.LoserIDs))
			if reason, ok := detail.Metadata["reason"].(string); ok && reason != "" {
				fmt.Fprintf(&b, "  Reason:  %s\n", reason)
			}
		}
	}
	return b.String()
}

func idList(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}

// Read loads a stored JSON transcript back into records, for replay.
func Read(dir, gameID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, gameID+".json"))
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", gameID, err)
	}
	return data, nil
}

// Render formats a stored JSON transcript as the human-readable
// play-by-play.
func Render(gameID string, jsonTranscript []byte) (string, error) {
	var records []record
	if err := json.Unmarshal(jsonTranscript, &records); err != nil {
		return "", fmt.Errorf("parse transcript %s: %w", gameID, err)
	}
	return render(gameID, records), nil
}

var _ event.Sink = (*Writer)(nil)
