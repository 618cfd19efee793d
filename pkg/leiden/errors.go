package leiden

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedGraph is returned by Builder.Build for inputs that do not
	// describe a simple undirected graph.
	ErrMalformedGraph = errors.New("malformed graph")

	// ErrDidNotConverge is wrapped by ConvergenceError when a move or level
	// budget runs out before a fixed point is reached.
	ErrDidNotConverge = errors.New("did not converge")

	// ErrInvalidConfig reports configuration values the algorithm cannot use.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConvergenceError carries the phase whose budget was exhausted.
type ConvergenceError struct {
	Phase string // "local_moving" or "driver"
	Limit int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: %s exceeded budget of %d", ErrDidNotConverge, e.Phase, e.Limit)
}

func (e *ConvergenceError) Unwrap() error { return ErrDidNotConverge }

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedGraph, fmt.Sprintf(format, args...))
}
