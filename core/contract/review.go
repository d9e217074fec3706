package contract

import "slices"

// FallbackReviewScore is the score substituted when a reviewer fails.
const FallbackReviewScore = 70

// ReviewResult is one specialist's opinion of a contract. RiskScore is trusted
// to lie in [0,100]; nothing downstream clamps it.
type ReviewResult struct {
	Reviewer        string   `json:"reviewer" yaml:"reviewer"`
	Opinion         string   `json:"opinion" yaml:"opinion"`
	RiskScore       int      `json:"risk_score" yaml:"risk_score"`
	Concerns        []string `json:"concerns,omitempty" yaml:"concerns,omitempty"`
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// Relabel returns a copy attributed to reviewer. This is the only change a
// review may undergo after creation.
func (r ReviewResult) Relabel(reviewer string) ReviewResult {
	out := r
	out.Reviewer = reviewer
	out.Concerns = slices.Clone(r.Concerns)
	out.Recommendations = slices.Clone(r.Recommendations)
	return out
}

// FallbackReview is the conservative result used when a reviewer cannot
// produce one.
func FallbackReview(reviewer string) ReviewResult {
	return ReviewResult{
		Reviewer:        reviewer,
		Opinion:         "Review unavailable; assuming elevated risk until a specialist confirms otherwise.",
		RiskScore:       FallbackReviewScore,
		Concerns:        []string{"automated review could not be completed"},
		Recommendations: []string{"request a manual specialist review"},
	}
}
