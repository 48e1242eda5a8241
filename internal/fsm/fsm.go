package fsm

import "errors"

var (
	ErrInvalidTransition = errors.New("transition not allowed")
	ErrTerminalState     = errors.New("state is terminal")
)

// Edges is a directed edge set: from -> set of permitted next states.
type Edges[S comparable] map[S]map[S]bool

// Transition validates a single-step move from current to requested.
// It never applies side effects; callers mutate only after a nil error.
func Transition[S comparable](current, requested S, edges Edges[S]) (S, error) {
	var zero S
	next, ok := edges[current]
	if !ok || len(next) == 0 {
		return zero, ErrTerminalState
	}
	if requested == current || !next[requested] {
		return zero, ErrInvalidTransition
	}
	return requested, nil
}

// Terminal reports whether a state has no outgoing edges.
func Terminal[S comparable](state S, edges Edges[S]) bool {
	return len(edges[state]) == 0
}
