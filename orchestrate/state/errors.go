package state

import "errors"

var (
	// ErrNotFound reports a (scope, key) with no committed value.
	ErrNotFound = errors.New("state entry not found")

	// ErrTypeMismatch reports a committed value of an unexpected type.
	ErrTypeMismatch = errors.New("state entry type mismatch")
)
