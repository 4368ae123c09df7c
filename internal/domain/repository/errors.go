package repository

import "errors"

// Error vocabulary shared by every repository. Implementations translate
// storage-specific failures into these before returning, so the application
// layer never sees a driver error type.
var (
	// ErrNotFound is returned when no entity with the given identity exists,
	// including dangling foreign references (e.g. an unknown organisation id).
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a create would violate a uniqueness
	// constraint.
	ErrConflict = errors.New("already exists")

	// ErrUnavailable is returned when the backing store is unreachable or an
	// operation timed out. Callers may retry; no other error in this
	// vocabulary is retryable.
	ErrUnavailable = errors.New("storage unavailable")
)
