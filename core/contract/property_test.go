package contract_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

// TestClassifyMonotonic verifies that a higher score never yields a lower level.
func TestClassifyMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	rank := map[contract.RiskLevel]int{
		contract.RiskLow:    0,
		contract.RiskMedium: 1,
		contract.RiskHigh:   2,
	}

	properties.Property("Classify is monotonic over [0,100]", prop.ForAll(
		func(a, b int) bool {
			if a > b {
				a, b = b, a
			}
			return rank[contract.Classify(a)] <= rank[contract.Classify(b)]
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// TestAggregateBounds verifies the aggregate stays within the reviewers' range.
func TestAggregateBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("aggregate lies between min and max review score", prop.ForAll(
		func(scores []int) bool {
			if len(scores) == 0 {
				return contract.Aggregate(nil).Score == contract.DefaultRiskScore
			}
			reviews := make([]contract.ReviewResult, len(scores))
			lo, hi := scores[0], scores[0]
			for i, s := range scores {
				reviews[i] = contract.ReviewResult{Reviewer: "r", RiskScore: s}
				lo, hi = min(lo, s), max(hi, s)
			}
			got := contract.Aggregate(reviews)
			return got.Score >= lo && got.Score <= hi && got.Level == contract.Classify(got.Score)
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}

// TestEvaluateBounded verifies evaluation never leaves [0,100] and never
// continues past the iteration cap.
func TestEvaluateBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("evaluation is clamped and capped", prop.ForAll(
		func(prior, items, iteration, delta int) bool {
			p := contract.NegotiationProposal{Iteration: iteration}
			for i := range items {
				p.Proposals = append(p.Proposals, string(rune('a'+i)))
			}
			res := contract.Evaluate(
				contract.RiskAssessment{Score: prior},
				p,
				func(int) int { return delta },
			)
			if res.NewScore < 0 || res.NewScore > 100 {
				return false
			}
			if iteration >= contract.MaxNegotiationIterations && res.Continue {
				return false
			}
			return res.Continue == (res.NewScore > contract.TargetRiskScore && iteration < contract.MaxNegotiationIterations)
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 10),
		gen.IntRange(1, 5),
		gen.IntRange(-5, 5),
	))

	properties.TestingRun(t)
}
