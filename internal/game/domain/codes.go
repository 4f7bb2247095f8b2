package domain

// Code is a machine-readable error code carried in event payloads.
type Code string

const (
	// CodeActionIllegal marks a turn whose action, including the
	// substituted default, was rejected as illegal.
	CodeActionIllegal Code = "ACTION_ILLEGAL"
	// CodeActionMalformed marks a turn whose action was rejected as
	// structurally invalid.
	CodeActionMalformed Code = "ACTION_MALFORMED"
	// CodeActionDefaulted marks a turn where the game's default action
	// was applied in place of the participant's decision.
	CodeActionDefaulted Code = "ACTION_DEFAULT_SUBSTITUTED"

	// CodeSafetyValve marks a forced terminal outcome: a round cap or
	// an aborted game.
	CodeSafetyValve Code = "SAFETY_VALVE_TRIGGERED"
)
