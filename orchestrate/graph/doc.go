// Package graph defines workflow graphs: named nodes joined by typed edges.
//
// A Graph is a static, inspectable description. It holds no run state and
// performs no execution; orchestrate/engine schedules a validated graph.
//
// # Nodes
//
// A Node receives its predecessor's output and a Runtime giving access to the
// run's shared state. Typed stages adapt ordinary functions:
//
//	analyze := graph.NewStage("analyze",
//	    func(ctx context.Context, rt graph.Runtime, c contract.ContractInfo) (contract.ContractInfo, error) {
//	        return c.Normalized(), c.Validate()
//	    })
//
// Join stages receive the outputs of every fan-in source in declared order:
//
//	aggregate := graph.NewJoinStage("aggregate",
//	    func(ctx context.Context, rt graph.Runtime, reviews []Reviewed) (Assessed, error) { ... })
//
// # Edges
//
//   - Plain: always followed
//   - Conditional: followed when a predicate over the source output holds
//   - Expression: a conditional edge whose predicate is a CEL expression over
//     the variable "output" (the source output in its JSON shape)
//   - Fan-out: dispatches every target as one concurrent group
//   - Fan-in: waits for every source, then runs the target once
//   - Loop-back: returns from a loop region member to the region head
//
// Conditional, expression and loop-back edges leaving a node are evaluated
// together in declaration order. The engine decides what happens when more
// than one matches (see config.GraphConfig.StrictConditions).
//
// # Validation
//
// Validate reports structural problems as errors wrapping ErrInvalidGraph:
// a missing entry point, no terminals, unreachable terminals, dead-end
// nodes, terminals with outgoing edges, ambiguous fan-in targets and
// loop-back edges outside their region.
//
// # Description
//
// Describe returns a serializable view of the graph, rendered as YAML by
// Description.YAML.
package graph
