package state

import "github.com/tailored-agentic-units/contract-review/observability"

const (
	EventStateWrite   observability.EventType = "state.write"
	EventStateCommit  observability.EventType = "state.commit"
	EventStateDiscard observability.EventType = "state.discard"
)
