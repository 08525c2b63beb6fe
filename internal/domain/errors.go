// Package domain defines the core progression entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrInvalidState is returned when a transition is requested from a
	// state that the sequencer cannot interpret. No mutation takes place.
	ErrInvalidState = errors.New("invalid progression state")

	// ErrUnknownFeature is returned for a rate-limited feature that has no counter.
	ErrUnknownFeature = errors.New("unknown rate-limited feature")

	// ErrMalformedRecord is returned by ProgressState.UnmarshalJSON when the
	// input is not a JSON object. The Decode* functions never return it; they
	// fall back to defaults instead.
	ErrMalformedRecord = errors.New("malformed persisted record")
)

// InvalidStateError carries the reason a transition was rejected.
type InvalidStateError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidState, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidState).
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// NewInvalidStateError formats a reason into an InvalidStateError.
func NewInvalidStateError(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}
