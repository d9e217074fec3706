package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/hitl"
	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/graph"
)

// gate describes a human approval point and how its answer maps to a
// decision.
type gate struct {
	stage      string
	kind       hitl.Kind
	prompt     func(Assessment) string
	approved   contract.Decision
	rejected   contract.Decision
	negotiated bool
}

var (
	finalApprovalGate = gate{
		stage: StageFinalApproval,
		kind:  hitl.FinalApproval,
		prompt: func(a Assessment) string {
			return fmt.Sprintf("Negotiation reduced risk to %d (%s). Approve the amended contract?", a.Risk.Score, a.Risk.Level)
		},
		approved:   contract.DecisionApproved,
		rejected:   contract.DecisionRequiresReview,
		negotiated: true,
	}

	escalationGate = gate{
		stage: StageEscalation,
		kind:  hitl.Escalation,
		prompt: func(a Assessment) string {
			return fmt.Sprintf("Negotiation ended at risk %d, above target %d. Escalate to senior management?", a.Risk.Score, contract.TargetRiskScore)
		},
		approved:   contract.DecisionEscalated,
		rejected:   contract.DecisionRejected,
		negotiated: true,
	}

	rejectConfirmationGate = gate{
		stage: StageRejectConfirmation,
		kind:  hitl.RejectConfirmation,
		prompt: func(a Assessment) string {
			return fmt.Sprintf("Risk %d exceeds %d and the contract will be rejected. Send it for manual review instead?", a.Risk.Score, contract.MediumRiskThreshold)
		},
		approved: contract.DecisionRequiresReview,
		rejected: contract.DecisionRejected,
	}
)

var nextActions = map[contract.Decision][]string{
	contract.DecisionApproved: {
		"Proceed to contract signature",
		"Archive the review record",
	},
	contract.DecisionRequiresReview: {
		"Route to the contract manager for manual review",
		"Attach specialist reviews and negotiation history",
	},
	contract.DecisionRejected: {
		"Notify the supplier of the rejection",
		"Source alternative suppliers",
	},
	contract.DecisionEscalated: {
		"Escalate to senior management",
		"Schedule a risk review meeting",
	},
}

// AutoApprove approves low-risk contracts without a human gate.
func AutoApprove(now func() time.Time) graph.Node {
	return graph.NewStage(StageAutoApprove, func(ctx context.Context, rt graph.Runtime, in Assessment) (contract.FinalDecision, error) {
		return decide(ctx, rt, in, contract.DecisionApproved, false, now), nil
	})
}

// node returns the terminal stage for a human approval point.
func (g gate) node(approvals Approver, now func() time.Time) graph.Node {
	return graph.NewStage(g.stage, func(ctx context.Context, rt graph.Runtime, in Assessment) (contract.FinalDecision, error) {
		ok, err := approvals.Request(ctx, g.kind, in.Contract, in.Risk, g.prompt(in))
		if err != nil {
			return contract.FinalDecision{}, fmt.Errorf("%s approval: %w", g.kind, err)
		}

		decision := g.rejected
		if ok {
			decision = g.approved
		}
		return decide(ctx, rt, in, decision, g.negotiated, now), nil
	})
}

// FinalApproval asks for sign-off on a negotiated contract that reached the
// target risk.
func FinalApproval(approvals Approver, now func() time.Time) graph.Node {
	return finalApprovalGate.node(approvals, now)
}

// Escalation asks whether a contract that stayed above target after
// negotiation goes to senior management.
func Escalation(approvals Approver, now func() time.Time) graph.Node {
	return escalationGate.node(approvals, now)
}

// RejectConfirmation gives a human the chance to overturn an automatic
// rejection of a high-risk contract.
func RejectConfirmation(approvals Approver, now func() time.Time) graph.Node {
	return rejectConfirmationGate.node(approvals, now)
}

func decide(ctx context.Context, rt graph.Runtime, in Assessment, decision contract.Decision, negotiated bool, now func() time.Time) contract.FinalDecision {
	d := contract.FinalDecision{
		RunID:       rt.RunID(),
		Decision:    decision,
		Contract:    in.Contract,
		FinalScore:  in.Risk.Score,
		FinalLevel:  in.Risk.Level,
		NextActions: append([]string(nil), nextActions[decision]...),
		DecidedAt:   now().UTC(),
	}

	if negotiated {
		original := lookup(ctx, rt, ScopeOriginalContract, KeyOriginalContract, in.Contract)
		originalRisk := lookup(ctx, rt, ScopeOriginalRisk, KeyOriginalRisk, in.Risk)
		d.OriginalContract = &original
		d.OriginalScore = &originalRisk.Score
		d.Negotiations = lookup(ctx, rt, ScopeNegotiationHistory, KeyProposals, []contract.NegotiationProposal(nil))
		d.Evaluations = lookup(ctx, rt, ScopeEvaluationHistory, KeyEvaluations, []contract.EvaluationResult(nil))
	}

	d.Summary = d.Describe()

	rt.Observer().OnEvent(ctx, observability.Event{
		Type:      EventDecision,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "pipeline",
		Data: map[string]any{
			"run_id":      d.RunID,
			"decision":    string(d.Decision),
			"final_score": d.FinalScore,
			"negotiated":  d.Negotiated(),
		},
	})

	return d
}
