package kernel

import "github.com/tailored-agentic-units/contract-review/observability"

// Kernel event types emitted around a run.
const (
	EventRunStart    observability.EventType = "kernel.run.start"
	EventRunComplete observability.EventType = "kernel.run.complete"
	EventError       observability.EventType = "kernel.error"
)
