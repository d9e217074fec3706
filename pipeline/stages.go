package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tailored-agentic-units/contract-review/agent"
	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/graph"
	"github.com/tailored-agentic-units/contract-review/orchestrate/state"
)

// Stage names.
const (
	StageAnalyze            = "analyze"
	StageAggregate          = "aggregate"
	StageAutoApprove        = "auto-approve"
	StageNegotiationSetup   = "negotiation-setup"
	StagePropose            = "propose"
	StageEvaluate           = "evaluate"
	StageFinalApproval      = "final-approval"
	StageEscalation         = "escalation"
	StageRejectConfirmation = "reject-confirmation"
)

// Analyze validates the contract and fills in defaults.
func Analyze() graph.Node {
	return graph.NewStage(StageAnalyze, func(ctx context.Context, rt graph.Runtime, c contract.ContractInfo) (contract.ContractInfo, error) {
		if err := c.Validate(); err != nil {
			return contract.ContractInfo{}, err
		}
		return c.Normalized(), nil
	})
}

// Review runs one specialist. Reviewer failures become a fallback review.
func Review(specialty agent.Specialty, reviewer agent.Reviewer) graph.Node {
	return graph.NewStage(specialty.Stage(), func(ctx context.Context, rt graph.Runtime, c contract.ContractInfo) (Reviewed, error) {
		return Reviewed{
			Contract: c,
			Review:   agent.SafeReview(ctx, rt.Observer(), specialty, reviewer, c),
		}, nil
	})
}

// Aggregate joins the specialist reviews, in their declared order, into one
// assessment and publishes it.
func Aggregate() graph.Node {
	return graph.NewJoinStage(StageAggregate, func(ctx context.Context, rt graph.Runtime, reviews []Reviewed) (Assessment, error) {
		results := make([]contract.ReviewResult, len(reviews))
		for i, r := range reviews {
			results[i] = r.Review
		}

		var c contract.ContractInfo
		if len(reviews) > 0 {
			c = reviews[0].Contract
		}

		risk := contract.Aggregate(results)
		rt.Emit(ctx, risk)

		return Assessment{Contract: c, Risk: risk}, nil
	})
}

// NegotiationSetup snapshots the pre-negotiation contract and risk and
// starts the iteration counter.
func NegotiationSetup() graph.Node {
	return graph.NewStage(StageNegotiationSetup, func(ctx context.Context, rt graph.Runtime, in Assessment) (Assessment, error) {
		rt.Write(ScopeOriginalContract, KeyOriginalContract, in.Contract)
		rt.Write(ScopeOriginalRisk, KeyOriginalRisk, in.Risk)
		rt.Write(ScopeNegotiation, KeyIteration, 1)
		rt.Write(ScopeNegotiation, KeyLatestRisk, in.Risk)
		rt.Write(ScopeNegotiationHistory, KeyProposals, []contract.NegotiationProposal{})
		rt.Write(ScopeEvaluationHistory, KeyEvaluations, []contract.EvaluationResult{})
		return in, nil
	})
}

// Propose asks the proposer for the next round of amendments.
func Propose(proposer agent.NegotiationProposer) graph.Node {
	return graph.NewStage(StagePropose, func(ctx context.Context, rt graph.Runtime, in Assessment) (Proposed, error) {
		iteration := lookup(ctx, rt, ScopeNegotiation, KeyIteration, 1)
		prior := lookup(ctx, rt, ScopeNegotiation, KeyLatestRisk, in.Risk)

		p := agent.SafePropose(ctx, rt.Observer(), proposer, in.Contract, prior, iteration)

		history := lookup(ctx, rt, ScopeNegotiationHistory, KeyProposals, []contract.NegotiationProposal(nil))
		rt.Write(ScopeNegotiationHistory, KeyProposals, append(slices.Clone(history), p.Proposal))

		return Proposed{Contract: p.Contract, Proposal: p.Proposal, Prior: prior}, nil
	})
}

// Evaluate re-scores the contract after a proposal and decides whether the
// loop continues.
func Evaluate(perturb contract.Perturbation) graph.Node {
	return graph.NewStage(StageEvaluate, func(ctx context.Context, rt graph.Runtime, in Proposed) (Assessment, error) {
		prior := lookup(ctx, rt, ScopeNegotiation, KeyLatestRisk, contract.MediumPlaceholder())

		result := contract.Evaluate(prior, in.Proposal, perturb)
		risk := prior.Reassess(result.NewScore, fmt.Sprintf(
			"Negotiated risk %d (%s) after iteration %d, from %d.",
			result.NewScore, contract.Classify(result.NewScore), result.Iteration, prior.Score))

		rt.Write(ScopeNegotiation, KeyLatestRisk, risk)
		if result.Continue {
			rt.Write(ScopeNegotiation, KeyIteration, result.Iteration+1)
		}

		history := lookup(ctx, rt, ScopeEvaluationHistory, KeyEvaluations, []contract.EvaluationResult(nil))
		rt.Write(ScopeEvaluationHistory, KeyEvaluations, append(slices.Clone(history), result))

		rt.Emit(ctx, result)

		return Assessment{Contract: in.Contract, Risk: risk, Evaluation: &result}, nil
	})
}

// lookup reads a committed value. A missing or mistyped entry is reported as
// a warning and fallback is used instead.
func lookup[T any](ctx context.Context, rt graph.Runtime, scope, key string, fallback T) T {
	v, err := state.Lookup[T](rt, scope, key)
	if err == nil {
		return v
	}

	rt.Observer().OnEvent(ctx, observability.Event{
		Type:      EventStateMissing,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "pipeline",
		Data: map[string]any{
			"scope": scope,
			"key":   key,
			"error": err.Error(),
		},
	})
	return fallback
}
