package lifecycle

import "errors"

// Sentinel errors for the request lifecycle. Services wrap these with detail
// and handlers translate them to HTTP status codes via errors.Is.
var (
	// ErrValidation marks malformed input rejected before any state change
	// (empty items, non-positive quantity or cost, missing remarks, missing file).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition marks an action attempted from a status that does
	// not permit it.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPrecondition marks a transition whose guard failed even though the
	// status allows it (no proof before complete, insufficient balance).
	ErrPrecondition = errors.New("precondition not met")
)
