package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/contract-review/agent"
	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/hitl"
	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
	"github.com/tailored-agentic-units/contract-review/orchestrate/engine"
	"github.com/tailored-agentic-units/contract-review/pipeline"
)

var acme = contract.ContractInfo{
	Supplier:       "Acme Industrial",
	Value:          420_000,
	TermMonths:     24,
	PaymentTerms:   "Net 30",
	DeliveryTerms:  "FOB",
	WarrantyMonths: 6,
}

func scored(score int, concerns ...string) agent.Reviewer {
	return agent.ReviewerFunc(func(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error) {
		return contract.ReviewResult{Opinion: "reviewed", RiskScore: score, Concerns: concerns}, nil
	})
}

func reviewers(legal, finance, procurement agent.Reviewer) *agent.Registry {
	r := agent.NewRegistry()
	_ = r.Register(agent.Legal, legal)
	_ = r.Register(agent.Finance, finance)
	_ = r.Register(agent.Procurement, procurement)
	return r
}

// items proposes n distinct items per round and leaves the contract unchanged.
func items(n int) agent.NegotiationProposer {
	return agent.ProposerFunc(func(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (agent.Proposal, error) {
		p := contract.NegotiationProposal{Rationale: "test"}
		for i := range n {
			p.Proposals = append(p.Proposals, string(rune('a'+i)))
		}
		return agent.Proposal{Proposal: p, Contract: c}, nil
	})
}

type approvals struct {
	mu     sync.Mutex
	answer bool
	kinds  []hitl.Kind
}

func (a *approvals) Request(ctx context.Context, kind hitl.Kind, c contract.ContractInfo, risk contract.RiskAssessment, prompt string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kinds = append(a.kinds, kind)
	return a.answer, nil
}

type run struct {
	result   *engine.Result
	decision contract.FinalDecision
	emitted  []any
	events   *observability.Recorder
}

func execute(t *testing.T, caps pipeline.Capabilities, c contract.ContractInfo) (run, error) {
	t.Helper()

	if caps.Perturbation == nil {
		caps.Perturbation = contract.NoPerturbation
	}

	g, err := pipeline.Build(caps)
	require.NoError(t, err)

	rec := &observability.Recorder{}
	eng, err := engine.New(g, config.DefaultGraphConfig(pipeline.GraphName), engine.WithObserver(rec))
	require.NoError(t, err)

	sink := &engine.Collector{}
	result, err := eng.Run(context.Background(), c, sink)

	r := run{result: result, emitted: sink.Values(), events: rec}
	if err == nil {
		last, ok := sink.Last()
		require.True(t, ok)
		r.decision = last.(contract.FinalDecision)
	}
	return r, err
}

func TestPipeline_AutoApprove(t *testing.T) {
	gate := &approvals{}
	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(20), scored(30), scored(25)),
		Proposer:  items(1),
		Approvals: gate,
	}, acme)
	require.NoError(t, err)

	assert.Equal(t, pipeline.StageAutoApprove, r.result.Terminal)
	assert.Equal(t, contract.DecisionApproved, r.decision.Decision)
	assert.Equal(t, 25, r.decision.FinalScore)
	assert.Equal(t, "USD", r.decision.Contract.Currency)
	assert.Nil(t, r.decision.OriginalScore)
	assert.Equal(t, r.result.RunID, r.decision.RunID)
	assert.Empty(t, gate.kinds)
}

func TestPipeline_FanInOrder(t *testing.T) {
	slow := agent.ReviewerFunc(func(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error) {
		time.Sleep(40 * time.Millisecond)
		return contract.ReviewResult{RiskScore: 10}, nil
	})

	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(slow, scored(20), scored(30)),
		Proposer:  items(1),
		Approvals: &approvals{},
	}, acme)
	require.NoError(t, err)

	risk, ok := r.emitted[0].(contract.RiskAssessment)
	require.True(t, ok, "first emission should be the aggregated risk, got %T", r.emitted[0])

	var order []string
	for _, review := range risk.Reviews {
		order = append(order, review.Reviewer)
	}
	assert.Equal(t, []string{"Legal", "Finance", "Procurement"}, order)
	assert.Equal(t, 20, risk.Score)
}

func TestPipeline_ReviewerFailure(t *testing.T) {
	failing := agent.ReviewerFunc(func(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error) {
		return contract.ReviewResult{}, errors.New("model unavailable")
	})

	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(10), failing, scored(10)),
		Proposer:  items(1),
		Approvals: &approvals{answer: true},
	}, acme)
	require.NoError(t, err)

	risk := r.emitted[0].(contract.RiskAssessment)
	assert.Equal(t, "Finance", risk.Reviews[1].Reviewer)
	assert.Equal(t, contract.FallbackReviewScore, risk.Reviews[1].RiskScore)
	assert.NotEmpty(t, risk.Reviews[1].Concerns)
	assert.Equal(t, 30, risk.Score)

	assert.Equal(t, contract.DecisionApproved, r.decision.Decision)
	assert.Len(t, r.events.OfType(agent.EventReviewFallback), 1)
}

func TestPipeline_NegotiationCapEscalates(t *testing.T) {
	gate := &approvals{answer: true}
	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(50), scored(50), scored(50)),
		Proposer:  items(1),
		Approvals: gate,
	}, acme)
	require.NoError(t, err)

	assert.Equal(t, pipeline.StageEscalation, r.result.Terminal)
	assert.Equal(t, contract.DecisionEscalated, r.decision.Decision)
	assert.Equal(t, []hitl.Kind{hitl.Escalation}, gate.kinds)
	assert.Equal(t, 3, r.result.Passes[pipeline.LoopNegotiation])

	require.Len(t, r.decision.Evaluations, 3)
	var scores []int
	for i, e := range r.decision.Evaluations {
		assert.Equal(t, i+1, e.Iteration)
		scores = append(scores, e.NewScore)
	}
	assert.Equal(t, []int{45, 40, 35}, scores)
	assert.False(t, r.decision.Evaluations[2].Continue)

	require.Len(t, r.decision.Negotiations, 3)
	for i, p := range r.decision.Negotiations {
		assert.Equal(t, i+1, p.Iteration)
		assert.Equal(t, contract.TargetRiskScore, p.TargetScore)
	}

	require.NotNil(t, r.decision.OriginalScore)
	assert.Equal(t, 50, *r.decision.OriginalScore)
	assert.Equal(t, 35, r.decision.FinalScore)
	assert.Equal(t, -15, r.decision.ScoreDelta())

	var evaluations int
	for _, v := range r.emitted {
		if _, ok := v.(contract.EvaluationResult); ok {
			evaluations++
		}
	}
	assert.Equal(t, 3, evaluations)
}

func TestPipeline_NegotiationConverges(t *testing.T) {
	amend := agent.ProposerFunc(func(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (agent.Proposal, error) {
		return agent.Proposal{
			Proposal: contract.NegotiationProposal{Proposals: []string{"extend warranty", "add penalty clause"}},
			Contract: c.With(func(n *contract.ContractInfo) {
				n.WarrantyMonths = 24
				n.PenaltyClause = true
			}),
		}, nil
	})

	gate := &approvals{answer: true}
	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(40), scored(40), scored(40)),
		Proposer:  amend,
		Approvals: gate,
	}, acme)
	require.NoError(t, err)

	assert.Equal(t, pipeline.StageFinalApproval, r.result.Terminal)
	assert.Equal(t, contract.DecisionApproved, r.decision.Decision)
	assert.Equal(t, []hitl.Kind{hitl.FinalApproval}, gate.kinds)
	assert.Equal(t, 30, r.decision.FinalScore)
	assert.Len(t, r.decision.Evaluations, 1)

	require.NotNil(t, r.decision.OriginalContract)
	assert.Equal(t, 6, r.decision.OriginalContract.WarrantyMonths)
	assert.Equal(t, 24, r.decision.Contract.WarrantyMonths)
	assert.Contains(t, r.decision.Changes(), "penalty_clause")
	assert.Contains(t, r.decision.Summary, "Amended:")
}

func TestPipeline_FinalApprovalDeclined(t *testing.T) {
	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(35), scored(35), scored(35)),
		Proposer:  items(1),
		Approvals: &approvals{answer: false},
	}, acme)
	require.NoError(t, err)

	assert.Equal(t, pipeline.StageFinalApproval, r.result.Terminal)
	assert.Equal(t, contract.DecisionRequiresReview, r.decision.Decision)
}

func TestPipeline_ProposerFailure(t *testing.T) {
	failing := agent.ProposerFunc(func(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (agent.Proposal, error) {
		return agent.Proposal{}, errors.New("unparseable")
	})

	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(50), scored(50), scored(50)),
		Proposer:  failing,
		Approvals: &approvals{answer: true},
	}, acme)
	require.NoError(t, err)

	assert.Equal(t, pipeline.StageFinalApproval, r.result.Terminal)
	assert.Equal(t, 20, r.decision.FinalScore)
	assert.Equal(t, acme.Normalized(), r.decision.Contract)
	require.Len(t, r.decision.Negotiations, 2)
	assert.Equal(t, "standard risk mitigation", r.decision.Negotiations[0].Rationale)
	assert.Len(t, r.events.OfType(agent.EventProposalFallback), 2)
}

func TestPipeline_HighRisk(t *testing.T) {
	tests := []struct {
		answer bool
		want   contract.Decision
	}{
		{answer: false, want: contract.DecisionRejected},
		{answer: true, want: contract.DecisionRequiresReview},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			gate := &approvals{answer: tt.answer}
			r, err := execute(t, pipeline.Capabilities{
				Reviewers: reviewers(scored(90), scored(80), scored(75)),
				Proposer:  items(1),
				Approvals: gate,
			}, acme)
			require.NoError(t, err)

			assert.Equal(t, pipeline.StageRejectConfirmation, r.result.Terminal)
			assert.Equal(t, tt.want, r.decision.Decision)
			assert.Equal(t, []hitl.Kind{hitl.RejectConfirmation}, gate.kinds)
			assert.NotEmpty(t, r.decision.NextActions)
		})
	}
}

func TestPipeline_ApprovalTimeoutFailsClosed(t *testing.T) {
	silent := hitl.TransportFunc(func(ctx context.Context, req hitl.Request) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	gw := hitl.NewGateway(silent, config.ApprovalConfig{Timeout: 50 * time.Millisecond}, nil)

	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(90), scored(90), scored(90)),
		Proposer:  items(1),
		Approvals: gw,
	}, acme)
	require.NoError(t, err)

	assert.Equal(t, contract.DecisionRejected, r.decision.Decision)
}

func TestPipeline_InvalidContract(t *testing.T) {
	r, err := execute(t, pipeline.Capabilities{
		Reviewers: reviewers(scored(10), scored(10), scored(10)),
		Proposer:  items(1),
		Approvals: &approvals{},
	}, contract.ContractInfo{Value: 10})

	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrInvalidContract)

	var execErr *engine.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, pipeline.StageAnalyze, execErr.Node)
	assert.Empty(t, r.emitted)
}

func TestPipeline_CancelledDuringApproval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocking := hitl.TransportFunc(func(ctx context.Context, req hitl.Request) (bool, error) {
		cancel()
		<-ctx.Done()
		return false, ctx.Err()
	})
	gw := hitl.NewGateway(blocking, config.ApprovalConfig{Timeout: time.Minute}, nil)

	g, err := pipeline.Build(pipeline.Capabilities{
		Reviewers:    reviewers(scored(90), scored(90), scored(90)),
		Proposer:     items(1),
		Approvals:    gw,
		Perturbation: contract.NoPerturbation,
	})
	require.NoError(t, err)

	eng, err := engine.New(g, config.DefaultGraphConfig(pipeline.GraphName))
	require.NoError(t, err)

	sink := &engine.Collector{}
	result, err := eng.Run(ctx, acme, sink)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, engine.ErrCancelled)
	for _, v := range sink.Values() {
		_, isDecision := v.(contract.FinalDecision)
		assert.False(t, isDecision)
	}
}

func TestPipeline_RuleCapabilities(t *testing.T) {
	risky := contract.ContractInfo{
		Supplier:       "Globex",
		Value:          600_000,
		TermMonths:     24,
		PaymentTerms:   "Net 15",
		DeliveryTerms:  "FOB",
		WarrantyMonths: 6,
		AutoRenewal:    true,
	}

	r, err := execute(t, pipeline.Capabilities{
		Reviewers: agent.RuleRegistry(),
		Proposer:  agent.RuleProposer{},
		Approvals: &approvals{answer: true},
	}, risky)
	require.NoError(t, err)

	require.NotNil(t, r.decision.OriginalScore)
	assert.Less(t, r.decision.FinalScore, *r.decision.OriginalScore)
	assert.True(t, r.decision.Negotiated())
	assert.True(t, r.decision.Contract.PenaltyClause)
}
