package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/arena/internal/game/domain"
)

// LLMConfig configures the OpenAI-compatible responses endpoint and
// HTTP behavior of the LLM oracle.
type LLMConfig struct {
	ResponsesURL string
	APIKey       string
	HTTPClient   *http.Client
}

// LLM consults an OpenAI-compatible responses endpoint for each turn.
// The request model comes from the participant, so one oracle instance
// serves seats backed by different models.
type LLM struct {
	cfg LLMConfig
}

// NewLLM builds an LLM oracle. The responses URL defaults to the OpenAI
// endpoint when empty.
func NewLLM(cfg LLMConfig) *LLM {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = "https://api.openai.com/v1/responses"
	}
	return &LLM{cfg: cfg}
}

// Decide builds a turn prompt, invokes the model and parses the reply
// into an Action.
func (l *LLM) Decide(ctx context.Context, req Request) (domain.Action, error) {
	ctx, span := otel.Tracer("arena/oracle").Start(ctx, "oracle.decide")
	span.SetAttributes(
		attribute.String("game.id", req.GameID),
		attribute.String("game.type", req.GameType),
		attribute.String("participant.id", req.ParticipantID),
	)
	defer span.End()

	apiKey := strings.TrimSpace(l.cfg.APIKey)
	model := strings.TrimSpace(req.Model)
	if apiKey == "" {
		return domain.Action{}, fmt.Errorf("%w: api key is required", ErrNoDecision)
	}
	if model == "" {
		return domain.Action{}, fmt.Errorf("%w: participant model is required", ErrNoDecision)
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": model,
		"input": buildPrompt(req),
	})
	if err != nil {
		return domain.Action{}, fmt.Errorf("marshal oracle request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.cfg.ResponsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return domain.Action{}, fmt.Errorf("build oracle request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Credential material is sent only as an Authorization header and is
	// never echoed in errors or transcripts.
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := l.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: %v", ErrNoDecision, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		if readErr != nil {
			return domain.Action{}, fmt.Errorf("read oracle error body: %w", readErr)
		}
		return domain.Action{}, fmt.Errorf("%w: status %d: %s", ErrNoDecision, res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return domain.Action{}, fmt.Errorf("decode oracle response: %w", err)
	}
	outputText := strings.TrimSpace(payload.OutputText)
	if outputText == "" {
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if strings.TrimSpace(content.Text) != "" {
					outputText = strings.TrimSpace(content.Text)
					break
				}
			}
			if outputText != "" {
				break
			}
		}
	}
	if outputText == "" {
		return domain.Action{}, fmt.Errorf("%w: response missing output text", ErrNoDecision)
	}
	return ParseAction(outputText)
}

// buildPrompt renders the turn context: view, discussion so far, and
// the legal action schemas with the required reply format.
func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(req.View)
	if len(req.Discussion) > 0 {
		b.WriteString("\n\n## Discussion so far:\n")
		for _, line := range req.Discussion {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n## Your available actions:\n")
	for _, schema := range req.Schemas {
		b.WriteString("- ")
		b.WriteString(schema.Name)
		if schema.Description != "" {
			b.WriteString(": ")
			b.WriteString(schema.Description)
		}
		b.WriteString("\n")
		for _, param := range schema.Params {
			fmt.Fprintf(&b, "    %s (%s): %s\n", param.Name, param.Type, param.Description)
		}
	}
	b.WriteString("\nReply with a single JSON object and nothing else: ")
	b.WriteString(`{"action": "<name>", "args": {...}}`)
	return b.String()
}

// ParseAction extracts an Action from a model reply. The reply may wrap
// the JSON object in a code fence or surrounding prose.
func ParseAction(text string) (domain.Action, error) {
	raw := extractJSON(text)
	if raw == "" {
		return domain.Action{}, fmt.Errorf("%w: no JSON object in reply", domain.ErrMalformedAction)
	}
	var parsed struct {
		Action string         `json:"action"`
		Args   map[string]any `json:"args"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.Action{}, fmt.Errorf("%w: %v", domain.ErrMalformedAction, err)
	}
	if strings.TrimSpace(parsed.Action) == "" {
		return domain.Action{}, fmt.Errorf("%w: missing action name", domain.ErrMalformedAction)
	}
	if parsed.Args == nil {
		parsed.Args = map[string]any{}
	}
	return domain.Action{Name: strings.TrimSpace(parsed.Action), Args: parsed.Args}, nil
}

// extractJSON returns the first balanced top-level JSON object in text.
func extractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
