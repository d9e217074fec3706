package pipeline

import "github.com/tailored-agentic-units/contract-review/observability"

const (
	EventStateMissing observability.EventType = "pipeline.state.missing"
	EventDecision     observability.EventType = "pipeline.decision"
)
