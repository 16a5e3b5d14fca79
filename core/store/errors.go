package store

import "errors"

var (
	// ErrNotFound is returned when a record id does not exist, including the
	// second delete of the same id (delete is not idempotent here).
	ErrNotFound = errors.New("not found")
	// ErrValidation covers missing required fields, bad enum values, id
	// collisions and patches that violate an entity invariant.
	ErrValidation = errors.New("validation error")
)
