package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalAction indicates an action outside the phase's legal grammar
// or an actor that is not eligible to act. Recovered by substituting the
// game's default action, never fatal.
var ErrIllegalAction = errors.New("illegal action")

// ErrMalformedAction indicates an action the engine could not parse into
// its schema. Treated the same as ErrIllegalAction.
var ErrMalformedAction = errors.New("malformed action")

// ErrInvariantViolation indicates a broken engine invariant, such as
// chip conservation failing after a pot distribution. Fatal: the game
// instance aborts because the fault is in the engine, not a participant.
var ErrInvariantViolation = errors.New("invariant violation")

// Action is one participant decision: a tool-style discriminant name
// plus structured arguments.
type Action struct {
	Name string
	Args map[string]any
}

// StringArg returns the named argument as a trimmed string. Numeric
// values are not coerced; absent or non-string values return "".
func (a Action) StringArg(key string) string {
	v, ok := a.Args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// IntArg returns the named argument as an int, accepting the numeric
// shapes JSON decoding produces.
func (a Action) IntArg(key string) (int, bool) {
	switch v := a.Args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// ActionOutcome records the normalized result of applying an Action.
// It is the single channel through which an applied action's effect
// reaches the rest of the engine and any transcript consumer.
//
// A nil VisibleTo means the outcome is public. A non-nil list restricts
// the outcome to the named participants (the actor is always included).
type ActionOutcome struct {
	ActorID   string
	Name      string
	Args      map[string]any
	Result    string
	Success   bool
	VisibleTo []string
}

// VisibleToParticipant reports whether the outcome may be shown to the
// given participant.
func (o ActionOutcome) VisibleToParticipant(id string) bool {
	if o.VisibleTo == nil {
		return true
	}
	if o.ActorID == id {
		return true
	}
	for _, v := range o.VisibleTo {
		if v == id {
			return true
		}
	}
	return false
}

// ActionSchema declares one legal action shape for an actor in a phase.
type ActionSchema struct {
	Name        string
	Description string
	Params      []ParamSchema
}

// ParamSchema declares one parameter of an action schema.
type ParamSchema struct {
	Name        string
	Type        string
	Description string
}

// FindSchema returns the schema matching the action name, if any.
func FindSchema(schemas []ActionSchema, name string) (ActionSchema, bool) {
	for _, s := range schemas {
		if s.Name == name {
			return s, true
		}
	}
	return ActionSchema{}, false
}

// ValidateAgainst rejects actions whose name is not in the legal set.
func (a Action) ValidateAgainst(schemas []ActionSchema) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: empty action name", ErrMalformedAction)
	}
	if _, ok := FindSchema(schemas, a.Name); !ok {
		return fmt.Errorf("%w: %q not in legal set", ErrIllegalAction, a.Name)
	}
	return nil
}
