package engine

import "github.com/tailored-agentic-units/contract-review/observability"

const (
	EventGraphStart     observability.EventType = "graph.start"
	EventGraphComplete  observability.EventType = "graph.complete"
	EventGraphCancel    observability.EventType = "graph.cancel"
	EventGraphError     observability.EventType = "graph.error"
	EventStepStart      observability.EventType = "step.start"
	EventNodeStart      observability.EventType = "node.start"
	EventNodeComplete   observability.EventType = "node.complete"
	EventFanOutDispatch observability.EventType = "fanout.dispatch"
	EventJoinWait       observability.EventType = "join.wait"
	EventJoinReady      observability.EventType = "join.ready"
	EventEdgeTransition observability.EventType = "edge.transition"
	EventEdgeConflict   observability.EventType = "edge.conflict"
	EventLoopBack       observability.EventType = "loop.back"
	EventOutputEmit     observability.EventType = "output.emit"
)
