// Package testutils provides common utilities for testing across the application.
// It centralizes repeated test setup so adapter and engine tests share one
// way of reaching an external database and of building fixtures.
package testutils
