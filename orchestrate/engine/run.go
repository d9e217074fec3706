package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/graph"
	"github.com/tailored-agentic-units/contract-review/orchestrate/workflows"
)

type task struct {
	node  string
	input any
	group int
	pass  int
}

type joinKey struct {
	target string
	pass   int
}

type pendingJoin struct {
	sources []string
	slots   []any
	filled  []bool
	count   int
}

// execution is the mutable state of one run.
type execution struct {
	*Engine
	rt        *runtime
	queue     []task
	joins     map[joinKey]*pendingJoin
	passes    map[string]int
	path      []string
	step      int
	nextGroup int
}

// Run executes the graph from its entry point with input. Stage emissions and
// the terminal output go to sink, which may be nil.
func (e *Engine) Run(ctx context.Context, input any, sink OutputSink) (*Result, error) {
	if sink == nil {
		sink = discard{}
	}

	runID := uuid.Must(uuid.NewV7()).String()
	ctx, span := e.tracer.Start(ctx, "graph.run",
		trace.WithAttributes(
			attribute.String("graph.name", e.cfg.Name),
			attribute.String("graph.run_id", runID),
		),
	)
	defer span.End()

	x := &execution{
		Engine: e,
		rt: &runtime{
			store:    e.newStore(e.observer),
			sink:     sink,
			runID:    runID,
			source:   e.cfg.Name,
			observer: e.observer,
		},
		queue:  []task{{node: e.graph.EntryPoint(), input: input}},
		joins:  make(map[joinKey]*pendingJoin),
		passes: make(map[string]int),
	}

	x.emit(ctx, EventGraphStart, observability.LevelInfo, map[string]any{
		"entry_point": e.graph.EntryPoint(),
		"terminals":   len(e.graph.Terminals()),
		"max_steps":   e.cfg.MaxSteps,
	})

	result, err := x.loop(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		level, event := observability.LevelError, EventGraphError
		if errors.Is(err, ErrCancelled) {
			level, event = observability.LevelWarning, EventGraphCancel
		}
		x.emit(ctx, event, level, map[string]any{
			"error": err.Error(),
			"steps": x.step,
		})
		return nil, err
	}

	span.SetAttributes(
		attribute.String("graph.terminal", result.Terminal),
		attribute.Int("graph.steps", result.Steps),
	)

	x.emit(ctx, EventGraphComplete, observability.LevelInfo, map[string]any{
		"terminal": result.Terminal,
		"steps":    result.Steps,
		"path":     len(result.Path),
	})

	return result, nil
}

func (x *execution) loop(ctx context.Context) (*Result, error) {
	for len(x.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, x.fail(x.queue[0].node, fmt.Errorf("%w: %w", ErrCancelled, err))
		}

		x.step++
		if x.step > x.cfg.MaxSteps {
			return nil, x.fail(x.queue[0].node, fmt.Errorf("%w: limit %d", ErrMaxSteps, x.cfg.MaxSteps))
		}

		wave := x.dequeue()

		x.emit(ctx, EventStepStart, observability.LevelVerbose, map[string]any{
			"step":  x.step,
			"nodes": names(wave),
		})

		outputs, failed, err := x.execute(ctx, wave)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil {
			if failed == "" {
				failed = wave[0].node
			}
			x.rt.store.Discard(ctx)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, x.fail(failed, fmt.Errorf("%w: %w", ErrCancelled, ctxErr))
			}
			return nil, x.fail(failed, err)
		}

		x.rt.store.Commit(ctx)

		for i, t := range wave {
			x.path = append(x.path, t.node)

			if x.graph.IsTerminal(t.node) {
				return x.finish(ctx, t, outputs[i]), nil
			}

			if err := x.route(ctx, t, outputs[i]); err != nil {
				return nil, x.fail(t.node, err)
			}
		}
	}

	return nil, x.fail("", ErrNoTerminalOutput)
}

// dequeue pops the next task together with the rest of its fan-out group.
func (x *execution) dequeue() []task {
	head := x.queue[0]
	if head.group == 0 {
		x.queue = x.queue[1:]
		return []task{head}
	}

	var wave, rest []task
	for _, t := range x.queue {
		if t.group == head.group {
			wave = append(wave, t)
		} else {
			rest = append(rest, t)
		}
	}
	x.queue = rest
	return wave
}

// execute runs a wave and returns outputs aligned with it. On failure the
// name of the failing node is returned.
func (x *execution) execute(ctx context.Context, wave []task) ([]any, string, error) {
	for _, t := range wave {
		if region, ok := x.graph.RegionOf(t.node); ok {
			x.passes[region.Name]++
		}
	}

	if len(wave) == 1 {
		out, err := x.runNode(ctx, wave[0])
		return []any{out}, wave[0].node, err
	}

	x.emit(ctx, EventFanOutDispatch, observability.LevelInfo, map[string]any{
		"step":    x.step,
		"targets": names(wave),
	})

	result, err := workflows.ProcessParallelWithDeps(ctx, x.cfg.Parallel, x.observer, wave,
		func(ctx context.Context, t task) (any, error) {
			return x.runNode(ctx, t)
		}, nil)

	if err != nil {
		var pErr *workflows.ParallelError[task]
		if errors.As(err, &pErr) && len(pErr.Errors) > 0 {
			return nil, pErr.Errors[0].Item.node, pErr.Errors[0].Err
		}
		return nil, wave[0].node, err
	}

	if len(result.Errors) > 0 {
		first := result.Errors[0]
		return nil, first.Item.node, first.Err
	}

	return result.Results, "", nil
}

func (x *execution) runNode(ctx context.Context, t task) (any, error) {
	node, _ := x.graph.Node(t.node)
	start := time.Now()

	x.emit(ctx, EventNodeStart, observability.LevelVerbose, map[string]any{
		"node": t.node,
		"step": x.step,
		"pass": t.pass,
	})

	out, err := node.Execute(ctx, x.rt, t.input)

	x.emit(ctx, EventNodeComplete, observability.LevelVerbose, map[string]any{
		"node":        t.node,
		"step":        x.step,
		"pass":        t.pass,
		"duration_ms": time.Since(start).Milliseconds(),
		"error":       err != nil,
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// route follows the outgoing edges of t in declaration order.
func (x *execution) route(ctx context.Context, t task, output any) error {
	edges := x.graph.Outgoing(t.node)

	chosen, err := x.resolve(ctx, t, edges, output)
	if err != nil {
		return err
	}

	for i, edge := range edges {
		switch edge.Kind {
		case graph.EdgePlain:
			x.transition(ctx, edge, edge.To)
			x.enqueue(task{node: edge.To, input: output, pass: t.pass})

		case graph.EdgeFanOut:
			x.nextGroup++
			for _, target := range edge.Targets {
				x.transition(ctx, edge, target)
				x.enqueue(task{node: target, input: output, group: x.nextGroup, pass: t.pass})
			}

		case graph.EdgeFanIn:
			if err := x.deposit(ctx, edge, t, output); err != nil {
				return err
			}

		case graph.EdgeConditional:
			if i == chosen {
				x.transition(ctx, edge, edge.To)
				x.enqueue(task{node: edge.To, input: output, pass: t.pass})
			}

		case graph.EdgeLoopBack:
			if i == chosen {
				x.emit(ctx, EventLoopBack, observability.LevelInfo, map[string]any{
					"from": edge.From,
					"to":   edge.To,
					"edge": edge.Name,
					"pass": t.pass + 1,
				})
				x.enqueue(task{node: edge.To, input: output, pass: t.pass + 1})
			}
		}
	}

	return nil
}

// resolve evaluates conditional and loop-back edges in declaration order and
// returns the index of the edge to follow, or -1.
func (x *execution) resolve(ctx context.Context, t task, edges []graph.Edge, output any) (int, error) {
	var matched []int
	for i, edge := range edges {
		if !edge.Conditional() {
			continue
		}
		ok, err := edge.Predicate(output)
		if err != nil {
			return -1, fmt.Errorf("evaluate edge %s: %w", edge.Label(), err)
		}
		if ok {
			matched = append(matched, i)
		}
	}

	if len(matched) == 0 {
		return -1, nil
	}

	if len(matched) > 1 {
		labels := make([]string, len(matched))
		for i, idx := range matched {
			labels[i] = edges[idx].Label()
		}

		if x.cfg.StrictConditions() {
			return -1, fmt.Errorf("%w: %s matched %v", ErrConflictingEdges, t.node, labels)
		}

		x.emit(ctx, EventEdgeConflict, observability.LevelWarning, map[string]any{
			"node":     t.node,
			"matched":  labels,
			"selected": labels[0],
		})
	}

	return matched[0], nil
}

func (x *execution) deposit(ctx context.Context, edge graph.Edge, t task, output any) error {
	key := joinKey{target: edge.To, pass: t.pass}

	pending, ok := x.joins[key]
	if !ok {
		pending = &pendingJoin{
			sources: edge.Sources,
			slots:   make([]any, len(edge.Sources)),
			filled:  make([]bool, len(edge.Sources)),
		}
		x.joins[key] = pending
	}

	idx := slices.Index(pending.sources, t.node)
	if pending.filled[idx] {
		return fmt.Errorf("join %s received a second output from %s in pass %d", edge.To, t.node, t.pass)
	}
	pending.slots[idx] = output
	pending.filled[idx] = true
	pending.count++

	if pending.count < len(pending.sources) {
		x.emit(ctx, EventJoinWait, observability.LevelVerbose, map[string]any{
			"join":     edge.To,
			"source":   t.node,
			"received": pending.count,
			"expected": len(pending.sources),
		})
		return nil
	}

	delete(x.joins, key)
	x.emit(ctx, EventJoinReady, observability.LevelInfo, map[string]any{
		"join":    edge.To,
		"sources": pending.sources,
		"pass":    t.pass,
	})
	x.enqueue(task{node: edge.To, input: pending.slots, pass: t.pass})
	return nil
}

func (x *execution) finish(ctx context.Context, t task, output any) *Result {
	x.rt.sink.Emit(ctx, output)
	x.emit(ctx, EventOutputEmit, observability.LevelInfo, map[string]any{
		"terminal": true,
		"node":     t.node,
		"type":     fmt.Sprintf("%T", output),
	})

	return &Result{
		RunID:    x.rt.runID,
		Terminal: t.node,
		Output:   output,
		Steps:    x.step,
		Path:     slices.Clone(x.path),
		Passes:   x.passes,
	}
}

func (x *execution) enqueue(t task) {
	x.queue = append(x.queue, t)
}

func (x *execution) transition(ctx context.Context, edge graph.Edge, to string) {
	x.emit(ctx, EventEdgeTransition, observability.LevelVerbose, map[string]any{
		"kind": string(edge.Kind),
		"from": edge.From,
		"to":   to,
		"edge": edge.Name,
	})
}

func (x *execution) fail(node string, err error) error {
	return &ExecutionError{
		Node: node,
		Path: slices.Clone(x.path),
		Step: x.step,
		Err:  err,
	}
}

func (x *execution) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	data["run_id"] = x.rt.runID
	x.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    x.cfg.Name,
		Data:      data,
	})
}

func names(wave []task) []string {
	out := make([]string, len(wave))
	for i, t := range wave {
		out[i] = t.node
	}
	return out
}
