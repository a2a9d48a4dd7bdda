package statemachine

import (
	"context"
)

// Action executes side effects during a transition. Returning an error
// aborts the transition and leaves the machine in its current state.
type Action[S, E comparable, D any] func(ctx context.Context, from, to S, event E, data D) error

// Guard decides at fire time whether a transition may be taken.
type Guard[S, E comparable, D any] func(ctx context.Context, from S, event E, data D) bool

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition[S, E comparable, D any] struct {
	From    S
	To      S
	Event   E
	Guards  []Guard[S, E, D]  // All must pass for the transition to proceed
	Actions []Action[S, E, D] // Executed in order before the state changes
}
