package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

func proposal(iteration int, items ...string) contract.NegotiationProposal {
	return contract.NegotiationProposal{
		Iteration:   iteration,
		Proposals:   items,
		TargetScore: contract.TargetRiskScore,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		prior        int
		proposal     contract.NegotiationProposal
		perturb      contract.Perturbation
		wantScore    int
		wantImproved bool
		wantContinue bool
	}{
		{
			name:         "one item reduces by five",
			prior:        50,
			proposal:     proposal(1, "add penalty clause"),
			wantScore:    45,
			wantImproved: true,
			wantContinue: true,
		},
		{
			name:         "duplicates count once",
			prior:        50,
			proposal:     proposal(1, "a", "a", "b"),
			wantScore:    40,
			wantImproved: true,
			wantContinue: true,
		},
		{
			name:         "reaching target stops",
			prior:        40,
			proposal:     proposal(1, "a", "b"),
			wantScore:    30,
			wantImproved: true,
			wantContinue: false,
		},
		{
			name:         "iteration cap stops",
			prior:        60,
			proposal:     proposal(3, "a"),
			wantScore:    55,
			wantImproved: true,
			wantContinue: false,
		},
		{
			name:         "empty proposal does not improve",
			prior:        60,
			proposal:     proposal(1),
			wantScore:    60,
			wantImproved: false,
			wantContinue: true,
		},
		{
			name:         "perturbation is applied",
			prior:        60,
			proposal:     proposal(1, "a"),
			perturb:      func(int) int { return 5 },
			wantScore:    60,
			wantImproved: false,
			wantContinue: true,
		},
		{
			name:         "clamped at zero",
			prior:        5,
			proposal:     proposal(1, "a", "b", "c"),
			perturb:      func(int) int { return -5 },
			wantScore:    0,
			wantImproved: true,
			wantContinue: false,
		},
		{
			name:         "clamped at one hundred",
			prior:        100,
			proposal:     proposal(1),
			perturb:      func(int) int { return 5 },
			wantScore:    100,
			wantImproved: false,
			wantContinue: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := contract.RiskAssessment{Score: tt.prior, Level: contract.Classify(tt.prior)}
			got := contract.Evaluate(prior, tt.proposal, tt.perturb)

			assert.Equal(t, tt.proposal.Iteration, got.Iteration)
			assert.Equal(t, tt.wantScore, got.NewScore)
			assert.Equal(t, tt.wantImproved, got.Improved)
			assert.Equal(t, tt.wantContinue, got.Continue)
			assert.NotEmpty(t, got.Comment)
		})
	}
}

func TestEvaluate_CapScenario(t *testing.T) {
	// 50 → 45 → 40 → 35 never reaches the target within three iterations.
	risk := contract.RiskAssessment{Score: 50, Level: contract.RiskMedium}
	var results []contract.EvaluationResult

	for iteration := 1; ; iteration++ {
		res := contract.Evaluate(risk, proposal(iteration, "tighten terms"), contract.NoPerturbation)
		results = append(results, res)
		risk = risk.Reassess(res.NewScore, res.Comment)
		if !res.Continue {
			break
		}
	}

	assert.Len(t, results, 3)
	assert.Equal(t, []int{45, 40, 35}, []int{results[0].NewScore, results[1].NewScore, results[2].NewScore})
	assert.False(t, results[2].Continue)
	assert.Greater(t, results[2].NewScore, contract.TargetRiskScore)
}

func TestUniformPerturbation_Bounds(t *testing.T) {
	perturb := contract.UniformPerturbation(contract.DefaultPerturbation)
	for i := range 500 {
		v := perturb(i)
		assert.GreaterOrEqual(t, v, -5)
		assert.LessOrEqual(t, v, 5)
	}

	assert.Equal(t, 0, contract.UniformPerturbation(0)(1))
}

func TestFallbackProposal(t *testing.T) {
	p := contract.FallbackProposal(2)

	assert.Equal(t, 2, p.Iteration)
	assert.Len(t, p.Proposals, 3)
	assert.Equal(t, "standard risk mitigation", p.Rationale)
	assert.Equal(t, contract.TargetRiskScore, p.TargetScore)
	assert.Empty(t, p.Changes)
}
