// Package domain defines the core value types shared by every game
// family: participants, roles, phases, actions and outcomes.
//
// The types here are deliberately game-agnostic. Game-specific state
// (boards, pots, policy decks) lives inside each engine implementation
// and only surfaces through ActionOutcome values and view projections.
package domain
