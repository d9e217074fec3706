package workflows

import "github.com/tailored-agentic-units/contract-review/observability"

const (
	EventParallelStart    observability.EventType = "parallel.start"
	EventParallelComplete observability.EventType = "parallel.complete"
	EventWorkerStart      observability.EventType = "worker.start"
	EventWorkerComplete   observability.EventType = "worker.complete"
)
