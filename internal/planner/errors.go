package planner

import "errors"

var (
	// ErrInvalidInput wraps every rejection raised before the search starts.
	ErrInvalidInput = errors.New("planner: invalid input")
	// ErrInvariantViolation reports an internal fault, such as a path step
	// that moves more than one limb.
	ErrInvariantViolation = errors.New("planner: invariant violation")
)
