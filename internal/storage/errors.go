package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned by snapshot stores when a snapshot ID
	// and window pair is already recorded. Snapshots are immutable.
	ErrDuplicateKey = errors.New("duplicate key: snapshot window already recorded")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
