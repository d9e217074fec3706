package agent

import "errors"

var (
	ErrEmptySpecialty   = errors.New("specialty cannot be empty")
	ErrReviewerExists   = errors.New("reviewer already registered")
	ErrReviewerNotFound = errors.New("reviewer not found")

	// ErrInvalidResponse is wrapped when a completion cannot be decoded or
	// fails schema validation.
	ErrInvalidResponse = errors.New("invalid completion response")
)
