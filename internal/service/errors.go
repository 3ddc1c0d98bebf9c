package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendWrite is returned when the backend rejected a mutation. The
	// cached snapshot is unchanged when this is returned.
	ErrBackendWrite = errors.New("backend write failed")

	// ErrUnsupported is returned when an optional backend feature is missing
	ErrUnsupported = errors.New("feature not supported by backend")

	// ErrTransitionNotAllowed is returned when the board policy refuses a move
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

func writeFailed(action string) error {
	return fmt.Errorf("failed to %s: %w", action, ErrBackendWrite)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
