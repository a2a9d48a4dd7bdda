package statemachine

import (
	"errors"
	"fmt"
)

// Option configures a state machine during construction.
type Option[S, E comparable, D any] func(*Machine[S, E, D]) error

// TransitionOption configures a single transition with guards and actions.
type TransitionOption[S, E comparable, D any] func(*transitionConfig[S, E, D])

type transitionConfig[S, E comparable, D any] struct {
	guards  []Guard[S, E, D]
	actions []Action[S, E, D]
}

// New creates a state machine with the given initial state and options.
func New[S, E comparable, D any](initial S, opts ...Option[S, E, D]) (*Machine[S, E, D], error) {
	var zero S
	if initial == zero {
		return nil, errors.New("initial state cannot be the zero value")
	}

	m := &Machine[S, E, D]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]Transition[S, E, D]),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on error.
func MustNew[S, E comparable, D any](initial S, opts ...Option[S, E, D]) *Machine[S, E, D] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// WithTransition adds a single transition to the state machine.
func WithTransition[S, E comparable, D any](from, to S, event E, opts ...TransitionOption[S, E, D]) Option[S, E, D] {
	return func(m *Machine[S, E, D]) error {
		var zeroS S
		var zeroE E
		if from == zeroS || to == zeroS || event == zeroE {
			return ErrInvalidTransition
		}

		cfg := &transitionConfig[S, E, D]{}
		for _, opt := range opts {
			opt(cfg)
		}
		m.AddTransition(from, to, event, cfg.guards, cfg.actions)
		return nil
	}
}

// WithGuard adds a guard to a transition.
func WithGuard[S, E comparable, D any](guard Guard[S, E, D]) TransitionOption[S, E, D] {
	return func(cfg *transitionConfig[S, E, D]) {
		if guard != nil {
			cfg.guards = append(cfg.guards, guard)
		}
	}
}

// WithActions appends actions to a transition, preserving order.
func WithActions[S, E comparable, D any](actions ...Action[S, E, D]) TransitionOption[S, E, D] {
	return func(cfg *transitionConfig[S, E, D]) {
		for _, action := range actions {
			if action != nil {
				cfg.actions = append(cfg.actions, action)
			}
		}
	}
}
