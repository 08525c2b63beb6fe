package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("load progress: %w", ErrNotFound), true},
		{"store error around ErrNotFound", NewStoreError("daily_streak", "get", "no row", ErrNotFound), true},
		{"conflict", ErrConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	err := NewStoreError("progress_state", "put", "write rejected", ErrInvalidRecord)
	assert.Equal(t, "put operation on progress_state failed: write rejected: invalid record", err.Error())
	assert.ErrorIs(t, err, ErrInvalidRecord)

	var storeErr *StoreError
	assert.ErrorAs(t, fmt.Errorf("advance: %w", err), &storeErr)
	assert.Equal(t, "progress_state", storeErr.Entity)

	bare := NewStoreError("daily_streak", "get", "timed out", nil)
	assert.Equal(t, "get operation on daily_streak failed: timed out", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
