// Package engine executes validated graphs.
//
// The engine owns a FIFO ready queue of tasks. Each step pops one task, or the
// whole fan-out group it belongs to, executes it, commits the writes queued by
// the step to the run's state.Store, and then routes each output along the
// node's outgoing edges:
//
//   - Plain edges enqueue their target
//   - Conditional and loop-back edges are evaluated in declaration order and
//     at most one is followed
//   - Fan-out edges enqueue their targets as one concurrent group, executed
//     through workflows.ProcessParallelWithDeps
//   - Fan-in edges deposit the output in a pending join keyed by (target,
//     pass); the target runs once every source has reported, receiving the
//     outputs in declared source order
//   - Loop-back edges re-enter the loop head with the pass incremented
//
// The first terminal to complete emits its output to the OutputSink and ends
// the run. A queue that drains without reaching a terminal fails with
// ErrNoTerminalOutput.
//
// # Usage
//
//	eng, err := engine.New(g, config.DefaultGraphConfig("review"))
//	if err != nil {
//	    return err
//	}
//	collector := &engine.Collector{}
//	result, err := eng.Run(ctx, input, collector)
//
// # Errors
//
// Every run failure is an *ExecutionError naming the node, the path taken
// and the step. Wrapped sentinels distinguish the cause: ErrCancelled,
// ErrMaxSteps, ErrNoTerminalOutput, ErrConflictingEdges, or the stage's own
// error. A failed step's queued writes are discarded.
//
// # Observability
//
// Each run opens an OpenTelemetry span and emits graph, step, node, edge,
// join, loop and output events to the configured observer.
package engine
