package graph

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/state"
)

// Runtime is the run-scoped environment handed to every node execution.
type Runtime interface {
	state.Reader
	state.Writer

	// Emit publishes an intermediate-visible value to the run's output sink.
	Emit(ctx context.Context, value any)

	// RunID identifies the current run.
	RunID() string

	// Observer receives node-level events.
	Observer() observability.Observer
}

// Node is one unit of work in a graph.
type Node interface {
	Name() string
	Execute(ctx context.Context, rt Runtime, input any) (any, error)
}

// StageFunc is the typed body of a stage.
type StageFunc[In, Out any] func(ctx context.Context, rt Runtime, input In) (Out, error)

type stage[In, Out any] struct {
	name string
	fn   StageFunc[In, Out]
}

// NewStage wraps fn as a Node. An input that is not an In fails with
// ErrInputType.
func NewStage[In, Out any](name string, fn StageFunc[In, Out]) Node {
	return &stage[In, Out]{name: name, fn: fn}
}

func (s *stage[In, Out]) Name() string {
	return s.name
}

func (s *stage[In, Out]) Execute(ctx context.Context, rt Runtime, input any) (any, error) {
	in, ok := input.(In)
	if !ok {
		var want In
		return nil, fmt.Errorf("%w: stage %s expects %T, got %T", ErrInputType, s.name, want, input)
	}
	return s.fn(ctx, rt, in)
}

type joinStage[In, Out any] struct {
	name string
	fn   StageFunc[[]In, Out]
}

// NewJoinStage wraps fn as a Node for fan-in targets. The engine delivers
// the source outputs as a []any in declared source order; each element must
// be an In.
func NewJoinStage[In, Out any](name string, fn StageFunc[[]In, Out]) Node {
	return &joinStage[In, Out]{name: name, fn: fn}
}

func (s *joinStage[In, Out]) Name() string {
	return s.name
}

func (s *joinStage[In, Out]) Execute(ctx context.Context, rt Runtime, input any) (any, error) {
	raw, ok := input.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: join stage %s expects []any, got %T", ErrInputType, s.name, input)
	}

	items := make([]In, len(raw))
	for i, v := range raw {
		item, ok := v.(In)
		if !ok {
			var want In
			return nil, fmt.Errorf("%w: join stage %s input %d expects %T, got %T", ErrInputType, s.name, i, want, v)
		}
		items[i] = item
	}
	return s.fn(ctx, rt, items)
}

// FunctionNode adapts an untyped closure.
type FunctionNode struct {
	name string
	fn   func(ctx context.Context, rt Runtime, input any) (any, error)
}

func NewFunctionNode(name string, fn func(context.Context, Runtime, any) (any, error)) *FunctionNode {
	return &FunctionNode{name: name, fn: fn}
}

func (n *FunctionNode) Name() string {
	return n.name
}

func (n *FunctionNode) Execute(ctx context.Context, rt Runtime, input any) (any, error) {
	return n.fn(ctx, rt, input)
}
