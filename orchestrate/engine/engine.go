package engine

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
	"github.com/tailored-agentic-units/contract-review/orchestrate/graph"
	"github.com/tailored-agentic-units/contract-review/orchestrate/state"
)

const tracerName = "github.com/tailored-agentic-units/contract-review/orchestrate/engine"

// Engine runs a validated graph. An Engine holds no run state and may execute
// any number of runs concurrently.
type Engine struct {
	graph    *graph.Graph
	cfg      config.GraphConfig
	observer observability.Observer
	newStore func(observability.Observer) *state.Store
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver uses observer instead of resolving cfg.Observer.
func WithObserver(observer observability.Observer) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithStore replaces the per-run state store constructor.
func WithStore(factory func(observability.Observer) *state.Store) Option {
	return func(e *Engine) {
		e.newStore = factory
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// New validates g and returns an Engine for it.
func New(g *graph.Graph, cfg config.GraphConfig, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, errors.New("graph cannot be nil")
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("graph validation failed: %w", err)
	}

	defaults := config.DefaultGraphConfig(g.Name())
	defaults.Merge(&cfg)

	e := &Engine{
		graph:    g,
		cfg:      defaults,
		newStore: state.New,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.observer == nil {
		observer, err := observability.GetObserver(e.cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		e.observer = observer
	}

	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}

	return e, nil
}

// Graph returns the graph the engine executes.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Result summarizes a successful run.
type Result struct {
	RunID    string
	Terminal string
	Output   any
	Steps    int
	Path     []string

	// Passes counts executions of each loop region head, by region name
	Passes map[string]int
}
