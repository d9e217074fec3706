package pipeline

import (
	"fmt"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/orchestrate/graph"
)

// GraphName is the default graph and observer source name.
const GraphName = "contract-review"

// LoopNegotiation names the propose/evaluate loop region.
const LoopNegotiation = "negotiation"

// Branch expressions over an Assessment's JSON shape.
var (
	ExprLowRisk    = fmt.Sprintf("output.risk.score <= %d.0", contract.LowRiskThreshold)
	ExprMediumRisk = fmt.Sprintf("output.risk.score > %d.0 && output.risk.score <= %d.0", contract.LowRiskThreshold, contract.MediumRiskThreshold)
	ExprHighRisk   = fmt.Sprintf("output.risk.score > %d.0", contract.MediumRiskThreshold)

	ExprConverged = fmt.Sprintf(`!output.evaluation["continue"] && output.risk.score <= %d.0`, contract.TargetRiskScore)
	ExprExhausted = fmt.Sprintf(`!output.evaluation["continue"] && output.risk.score > %d.0`, contract.TargetRiskScore)
)

// Build assembles the contract-review graph around caps. Reviewers run in
// registry order, and the aggregate stage receives their results in that
// order.
func Build(caps Capabilities) (*graph.Graph, error) {
	if err := caps.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrInvalidGraph, err)
	}
	caps = caps.withDefaults()

	g := graph.New(GraphName)

	nodes := []graph.Node{Analyze()}

	var reviews []string
	for _, specialty := range caps.Reviewers.List() {
		reviewer, err := caps.Reviewers.Get(specialty)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, Review(specialty, reviewer))
		reviews = append(reviews, specialty.Stage())
	}

	nodes = append(nodes,
		Aggregate(),
		AutoApprove(caps.Now),
		NegotiationSetup(),
		Propose(caps.Proposer),
		Evaluate(caps.Perturbation),
		FinalApproval(caps.Approvals, caps.Now),
		Escalation(caps.Approvals, caps.Now),
		RejectConfirmation(caps.Approvals, caps.Now),
	)

	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	steps := []func() error{
		func() error { return g.SetEntryPoint(StageAnalyze) },
		func() error { return g.AddFanOutEdge(StageAnalyze, reviews...) },
		func() error { return g.AddFanInEdge(reviews, StageAggregate) },

		func() error { return g.AddExpressionEdge(StageAggregate, StageAutoApprove, ExprLowRisk) },
		func() error { return g.AddExpressionEdge(StageAggregate, StageNegotiationSetup, ExprMediumRisk) },
		func() error { return g.AddExpressionEdge(StageAggregate, StageRejectConfirmation, ExprHighRisk) },

		func() error { return g.AddEdge(StageNegotiationSetup, StagePropose) },
		func() error { return g.AddEdge(StagePropose, StageEvaluate) },
		func() error { return g.AddLoopRegion(LoopNegotiation, StagePropose, StageEvaluate) },
		func() error {
			return g.AddLoopBackEdge(StageEvaluate, StagePropose, "continue-negotiation",
				graph.When(func(a Assessment) bool { return a.Evaluation != nil && a.Evaluation.Continue }))
		},
		func() error { return g.AddExpressionEdge(StageEvaluate, StageFinalApproval, ExprConverged) },
		func() error { return g.AddExpressionEdge(StageEvaluate, StageEscalation, ExprExhausted) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	for _, terminal := range []string{StageAutoApprove, StageFinalApproval, StageEscalation, StageRejectConfirmation} {
		if err := g.SetTerminal(terminal); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
