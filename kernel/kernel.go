// Package kernel composes the contract-review runtime: reviewer registry,
// negotiation proposer, approval gateway and graph engine, all initialized
// from a single Config.
//
// The kernel initializes from configuration via New. Functional options
// replace any config-created collaborator, which is how tests and hosts with
// real language models plug in.
//
//	cfg, err := kernel.LoadConfig("review.yaml")
//	k, err := kernel.New(cfg)
//	result, err := k.Run(ctx, contractInfo)
//	fmt.Println(result.Decision.Describe())
package kernel

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tailored-agentic-units/contract-review/agent"
	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/hitl"
	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
	"github.com/tailored-agentic-units/contract-review/orchestrate/engine"
	"github.com/tailored-agentic-units/contract-review/orchestrate/graph"
	"github.com/tailored-agentic-units/contract-review/pipeline"
)

// Result holds the outcome of a kernel Run invocation.
type Result struct {
	Decision contract.FinalDecision // Terminal decision of the run.
	Run      *engine.Result         // Engine path, step and loop pass counts.
}

// Option configures a Kernel after config-driven initialization.
type Option func(*Kernel)

// WithReviewers overrides the config-selected rule reviewers.
func WithReviewers(r *agent.Registry) Option {
	return func(k *Kernel) { k.reviewers = r }
}

// WithProposer overrides the rule-based negotiation proposer.
func WithProposer(p agent.NegotiationProposer) Option {
	return func(k *Kernel) { k.proposer = p }
}

// WithApprovals bypasses the approval gateway entirely.
func WithApprovals(a pipeline.Approver) Option {
	return func(k *Kernel) { k.approvals = a }
}

// WithTransport overrides the config-selected approval transport. The
// gateway timeout still comes from config.
func WithTransport(t hitl.Transport) Option {
	return func(k *Kernel) { k.transport = t }
}

// WithObserver overrides the observer named by cfg.Graph.Observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithPerturbation overrides the configured evaluation noise.
func WithPerturbation(p contract.Perturbation) Option {
	return func(k *Kernel) { k.perturbation = p }
}

// WithClock overrides the decision timestamp source.
func WithClock(now func() time.Time) Option {
	return func(k *Kernel) { k.now = now }
}

// WithSink receives every value the run emits, in emission order.
func WithSink(s engine.OutputSink) Option {
	return func(k *Kernel) { k.sink = s }
}

// WithIO sets the streams used by the console transport. Defaults to
// stdin and stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(k *Kernel) {
		k.in = r
		k.out = w
	}
}

// Kernel runs the contract-review workflow.
type Kernel struct {
	cfg          Config
	reviewers    *agent.Registry
	proposer     agent.NegotiationProposer
	approvals    pipeline.Approver
	transport    hitl.Transport
	callback     *hitl.CallbackTransport
	observer     observability.Observer
	perturbation contract.Perturbation
	now          func() time.Time
	sink         engine.OutputSink
	in           io.Reader
	out          io.Writer

	graph  *graph.Graph
	engine *engine.Engine
}

// New creates a Kernel from configuration. Options applied after
// initialization can override any collaborator.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	reviewers, err := selectReviewers(merged.Reviewers)
	if err != nil {
		return nil, err
	}

	k := &Kernel{
		cfg:       merged,
		reviewers: reviewers,
		proposer:  agent.RuleProposer{},
		in:        os.Stdin,
		out:       os.Stdout,
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.observer == nil {
		observer, err := observability.GetObserver(merged.Graph.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		k.observer = observer
	}

	if k.perturbation == nil {
		k.perturbation = contract.UniformPerturbation(merged.Negotiation.Perturbation())
	}

	if k.approvals == nil {
		if k.transport == nil {
			t, err := k.newTransport()
			if err != nil {
				return nil, err
			}
			k.transport = t
		}
		k.approvals = hitl.NewGateway(k.transport, merged.Approval, k.observer)
	}

	g, err := pipeline.Build(pipeline.Capabilities{
		Reviewers:    k.reviewers,
		Proposer:     k.proposer,
		Approvals:    k.approvals,
		Perturbation: k.perturbation,
		Now:          k.now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	e, err := engine.New(g, merged.Graph, engine.WithObserver(k.observer))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	k.graph = g
	k.engine = e
	return k, nil
}

func (k *Kernel) newTransport() (hitl.Transport, error) {
	switch k.cfg.Approval.Transport {
	case config.TransportConsole:
		return hitl.NewConsoleTransport(k.in, k.out), nil
	case config.TransportAutoApprove:
		return hitl.AutoTransport{Approve: true}, nil
	case config.TransportAutoReject:
		return hitl.AutoTransport{Approve: false}, nil
	case config.TransportConnect:
		k.callback = hitl.NewCallbackTransport()
		return k.callback, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, k.cfg.Approval.Transport)
	}
}

// selectReviewers builds a rule reviewer registry holding the named
// specialties, in the order given. No names selects every specialty.
func selectReviewers(names []string) (*agent.Registry, error) {
	if len(names) == 0 {
		return agent.RuleRegistry(), nil
	}

	reg := agent.NewRegistry()
	for _, name := range names {
		s, err := agent.ParseSpecialty(name)
		if err != nil {
			return nil, fmt.Errorf("failed to select reviewers: %w", err)
		}
		if err := reg.Register(s, agent.RuleReviewer{Specialty: s}); err != nil {
			return nil, fmt.Errorf("failed to select reviewers: %w", err)
		}
	}
	return reg, nil
}

// Config returns the merged configuration the kernel was built from.
func (k *Kernel) Config() Config {
	return k.cfg
}

// Callback returns the parked-request transport when the approval
// transport is "connect", nil otherwise. Hosts serve it with
// connectapi.ListenAndServe.
func (k *Kernel) Callback() *hitl.CallbackTransport {
	return k.callback
}

// Graph returns the built workflow graph.
func (k *Kernel) Graph() *graph.Graph {
	return k.graph
}

// Describe renders the workflow graph as YAML.
func (k *Kernel) Describe() ([]byte, error) {
	return k.graph.Describe().YAML()
}

// Run reviews c and returns its final decision. Every emitted value
// (risk assessment, evaluations, decision) also reaches the WithSink sink.
func (k *Kernel) Run(ctx context.Context, c contract.ContractInfo) (*Result, error) {
	k.emit(ctx, EventRunStart, observability.LevelInfo, map[string]any{
		"graph":    k.graph.Name(),
		"supplier": c.Supplier,
	})

	collector := &engine.Collector{}
	var sink engine.OutputSink = collector
	if k.sink != nil {
		sink = engine.MultiSink{collector, k.sink}
	}

	run, err := k.engine.Run(ctx, c, sink)
	if err != nil {
		k.emit(ctx, EventError, observability.LevelError, map[string]any{"error": err.Error()})
		return nil, err
	}

	decision, ok := run.Output.(contract.FinalDecision)
	if !ok {
		last, found := collector.Last()
		decision, ok = last.(contract.FinalDecision)
		if !found || !ok {
			k.emit(ctx, EventError, observability.LevelError, map[string]any{
				"error":    ErrNoDecision.Error(),
				"terminal": run.Terminal,
			})
			return nil, fmt.Errorf("%w: terminal %s", ErrNoDecision, run.Terminal)
		}
	}

	k.emit(ctx, EventRunComplete, observability.LevelInfo, map[string]any{
		"run_id":   run.RunID,
		"decision": string(decision.Decision),
		"score":    decision.FinalScore,
		"steps":    run.Steps,
	})

	return &Result{Decision: decision, Run: run}, nil
}

func (k *Kernel) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	k.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "kernel",
		Data:      data,
	})
}
