package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when no record exists under the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a concurrent writer won a compare-and-swap
	// race more often than the caller was willing to retry.
	ErrConflict = errors.New("record changed concurrently")

	// ErrInvalidRecord is returned when a payload is rejected by the backend,
	// for example because it is not valid JSON.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidKey is returned for a key outside the known record set.
	ErrInvalidKey = errors.New("invalid record key")

	// ErrTransactionFailed is returned when a multi-record write could not be
	// committed atomically.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The record key or entity involved (e.g., "progress_state")
	Operation string // The operation that failed (e.g., "get", "put_many")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
