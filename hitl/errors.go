package hitl

import "errors"

var (
	// ErrRequestInFlight is returned when a request is made while another is
	// still awaiting an answer.
	ErrRequestInFlight = errors.New("approval request already in flight")

	// ErrUnknownRequest is returned when answering a request that is not
	// pending.
	ErrUnknownRequest = errors.New("unknown approval request")
)
