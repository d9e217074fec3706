package hitl

import "github.com/tailored-agentic-units/contract-review/observability"

const (
	EventRequest observability.EventType = "hitl.request"
	EventAnswer  observability.EventType = "hitl.answer"
	EventTimeout observability.EventType = "hitl.timeout"
	EventError   observability.EventType = "hitl.error"
)
