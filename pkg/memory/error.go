package memory

import "errors"

var (
	// ErrUnavailable is returned when the vector index cannot be reached.
	ErrUnavailable = errors.New("memory store unavailable")

	// ErrNotFound is returned when a referenced memory does not exist for
	// the given user.
	ErrNotFound = errors.New("memory not found")
)
