package agent

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/observability"
)

const (
	EventReviewFallback   observability.EventType = "agent.review.fallback"
	EventProposalFallback observability.EventType = "agent.proposal.fallback"
)

// SafeReview calls reviewer and attributes the result to specialty. A failed
// review becomes contract.FallbackReview and a warning event.
func SafeReview(ctx context.Context, observer observability.Observer, specialty Specialty, reviewer Reviewer, c contract.ContractInfo) contract.ReviewResult {
	result, err := reviewer.Review(ctx, c)
	if err != nil {
		notify(ctx, observer, EventReviewFallback, map[string]any{
			"specialty": string(specialty),
			"error":     err.Error(),
			"score":     contract.FallbackReviewScore,
		})
		return contract.FallbackReview(string(specialty))
	}
	return result.Relabel(string(specialty))
}

// SafePropose calls proposer. A failed proposal becomes
// contract.FallbackProposal, with the contract left unchanged, and a warning
// event. The returned proposal always carries iteration and the changes
// between c and the proposed contract.
func SafePropose(ctx context.Context, observer observability.Observer, proposer NegotiationProposer, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) Proposal {
	p, err := proposer.Propose(ctx, c, risk, iteration)
	if err != nil {
		notify(ctx, observer, EventProposalFallback, map[string]any{
			"iteration": iteration,
			"error":     err.Error(),
		})
		return Proposal{Proposal: contract.FallbackProposal(iteration), Contract: c}
	}

	p.Proposal.Iteration = iteration
	p.Proposal.TargetScore = contract.TargetRiskScore
	p.Proposal = p.Proposal.WithChanges(c.Diff(p.Contract))
	return p
}

func notify(ctx context.Context, observer observability.Observer, typ observability.EventType, data map[string]any) {
	if observer == nil {
		return
	}
	observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "agent",
		Data:      data,
	})
}
