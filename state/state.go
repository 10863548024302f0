package state

import (
	"errors"
	"fmt"
)

// ErrTransitionNotAllowed is returned when no rule exists for a (state, event) pair
// and the event has no dedicated rejection error.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// Rule is one row of a transition table. Guard runs first and must not mutate
// anything; Action runs only when the guard passes and returns the next state.
type Rule[S comparable, C any] struct {
	Guard  func(c C) error
	Action func(c C) S
}

// Table maps (state, event) to a guarded action. It holds no current state of its
// own: callers keep the state in their model and ask the table what to do with it.
type Table[S comparable, E comparable, C any] struct {
	rules   map[S]map[E]Rule[S, C]
	rejects map[E]error
}

func NewTable[S comparable, E comparable, C any]() *Table[S, E, C] {
	return &Table[S, E, C]{
		rules:   make(map[S]map[E]Rule[S, C]),
		rejects: make(map[E]error),
	}
}

// On registers the rule for event in each of the given states.
func (t *Table[S, E, C]) On(event E, rule Rule[S, C], from ...S) *Table[S, E, C] {
	for _, s := range from {
		if _, exists := t.rules[s]; !exists {
			t.rules[s] = make(map[E]Rule[S, C])
		}
		t.rules[s][event] = rule
	}
	return t
}

// Reject sets the error returned when event fires in a state without a rule.
func (t *Table[S, E, C]) Reject(event E, err error) *Table[S, E, C] {
	t.rejects[event] = err
	return t
}

// Allowed reports whether a rule exists for event in state from.
func (t *Table[S, E, C]) Allowed(from S, event E) bool {
	_, ok := t.rules[from][event]
	return ok
}

// Fire evaluates the rule for (from, event). On any error the action is not run
// and from is returned unchanged.
func (t *Table[S, E, C]) Fire(from S, event E, c C) (S, error) {
	rule, ok := t.rules[from][event]
	if !ok {
		if err, exists := t.rejects[event]; exists {
			return from, err
		}
		return from, fmt.Errorf("%w: %v on %v", ErrTransitionNotAllowed, event, from)
	}
	if rule.Guard != nil {
		if err := rule.Guard(c); err != nil {
			return from, err
		}
	}
	if rule.Action == nil {
		return from, nil
	}
	return rule.Action(c), nil
}
