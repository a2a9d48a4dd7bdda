package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition: from, to, or event cannot be the zero value")
	// ErrNoTransition is matched by Fire errors when the current state has
	// no transition for the event.
	ErrNoTransition = errors.New("no transition available")
	// ErrRejected is matched by Fire errors when every candidate transition
	// was blocked by a guard.
	ErrRejected = errors.New("transition rejected by guards")
)

// TransitionError reports the state and event a Fire call failed on.
type TransitionError struct {
	State  string
	Event  string
	reason error
}

func newTransitionError(reason error, state, event any) *TransitionError {
	return &TransitionError{State: fmt.Sprint(state), Event: fmt.Sprint(event), reason: reason}
}

func (e *TransitionError) Error() string {
	if errors.Is(e.reason, ErrRejected) {
		return fmt.Sprintf("transition from state '%s' for event '%s' was rejected by guards", e.State, e.Event)
	}
	return fmt.Sprintf("no transition available from state '%s' for event '%s'", e.State, e.Event)
}

func (e *TransitionError) Unwrap() error { return e.reason }

func IsNoTransitionAvailableError(err error) bool { return errors.Is(err, ErrNoTransition) }

func IsTransitionRejectedError(err error) bool { return errors.Is(err, ErrRejected) }
