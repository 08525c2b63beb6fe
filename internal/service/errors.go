package service

import (
	"errors"
	"fmt"
)

// ErrLimitReached is returned by Consume when the feature has no units left today.
var ErrLimitReached = errors.New("daily limit reached")

// EngineError wraps errors from the engine with the operation that failed.
type EngineError struct {
	// Operation is the operation that failed (e.g., "advance", "try_consume")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for EngineError.
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("engine %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError. It returns nil for a nil err.
func NewEngineError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
