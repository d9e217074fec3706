package kernel

import "errors"

var (
	// ErrUnknownTransport is returned by New for an unsupported approval
	// transport name.
	ErrUnknownTransport = errors.New("unknown approval transport")

	// ErrNoDecision is returned by Run when the run completed without a
	// FinalDecision as its terminal output.
	ErrNoDecision = errors.New("run produced no decision")
)
