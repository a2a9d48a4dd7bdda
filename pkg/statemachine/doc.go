// Package statemachine provides a small generic finite state machine.
//
// States and events are any comparable types, usually string types, and every
// guard and action receives a typed payload D:
//
//	type state string
//	type event string
//
//	m := statemachine.MustNew[state, event, *Order]("pending",
//		statemachine.WithTransition[state, event, *Order]("pending", "paid", "pay",
//			statemachine.WithGuard[state, event, *Order](hasFunds),
//			statemachine.WithActions[state, event, *Order](charge, notify),
//		),
//	)
//
//	if err := m.Fire(ctx, "pay", order); err != nil {
//		// ErrNoTransition, ErrRejected or the failing action error
//	}
//
// Actions run in registration order before the state changes. The first
// failing action aborts the transition and its error is returned wrapped,
// so errors.Is works on it.
package statemachine
