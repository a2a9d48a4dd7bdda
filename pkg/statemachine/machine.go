package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Machine is a thread-safe in-memory finite state machine. Transitions are
// indexed as [from][event][]Transition; several transitions may share a
// from/event pair and the first whose guards pass wins.
type Machine[S, E comparable, D any] struct {
	initial     S
	current     S
	transitions map[S]map[E][]Transition[S, E, D]
	mu          sync.RWMutex
}

// Current returns the current state.
func (m *Machine[S, E, D]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddTransition registers a transition from -> to on event.
func (m *Machine[S, E, D]) AddTransition(from, to S, event E, guards []Guard[S, E, D], actions []Action[S, E, D]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[E][]Transition[S, E, D])
	}
	m.transitions[from][event] = append(m.transitions[from][event], Transition[S, E, D]{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
}

// Fire takes the first transition for event whose guards pass, runs its
// actions in order and moves to the target state. The machine is locked
// for the whole call, so actions must not fire on the same machine.
func (m *Machine[S, E, D]) Fire(ctx context.Context, event E, data D) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	transitions := m.transitions[m.current][event]
	if len(transitions) == 0 {
		return newTransitionError(ErrNoTransition, m.current, event)
	}

	t := m.pick(ctx, transitions, event, data)
	if t == nil {
		return newTransitionError(ErrRejected, m.current, event)
	}

	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, t.To, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.To
	return nil
}

// CanFire reports whether Fire would find a transition for event.
// Actions are not run.
func (m *Machine[S, E, D]) CanFire(ctx context.Context, event E, data D) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.pick(ctx, m.transitions[m.current][event], event, data) != nil
}

// Reset returns the machine to its initial state.
func (m *Machine[S, E, D]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func (m *Machine[S, E, D]) pick(ctx context.Context, transitions []Transition[S, E, D], event E, data D) *Transition[S, E, D] {
	for i, t := range transitions {
		passed := true
		for _, guard := range t.Guards {
			if guard != nil && !guard(ctx, m.current, event, data) {
				passed = false
				break
			}
		}
		if passed {
			return &transitions[i]
		}
	}
	return nil
}
