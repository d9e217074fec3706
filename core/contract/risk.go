package contract

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Risk thresholds shared by every component that classifies a score.
const (
	LowRiskThreshold    = 30
	MediumRiskThreshold = 70

	// DefaultRiskScore is used when there is nothing to aggregate.
	DefaultRiskScore = 50
)

// RiskLevel is the three-tier classification of a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Classify maps a score onto its level: ≤30 Low, ≤70 Medium, else High.
func Classify(score int) RiskLevel {
	switch {
	case score <= LowRiskThreshold:
		return RiskLow
	case score <= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// RiskAssessment is the aggregate view over one review pass, or the
// re-scored view produced by a negotiation round.
type RiskAssessment struct {
	Score    int            `json:"score" yaml:"score"`
	Level    RiskLevel      `json:"level" yaml:"level"`
	Reviews  []ReviewResult `json:"reviews,omitempty" yaml:"reviews,omitempty"`
	Summary  string         `json:"summary" yaml:"summary"`
	Concerns []string       `json:"concerns,omitempty" yaml:"concerns,omitempty"`
}

// Aggregate combines specialist reviews. The score is the mean rounded half
// away from zero; concerns are the order-preserving distinct union of every
// reviewer's concerns. With no reviews the score is DefaultRiskScore.
func Aggregate(reviews []ReviewResult) RiskAssessment {
	if len(reviews) == 0 {
		return RiskAssessment{
			Score:   DefaultRiskScore,
			Level:   Classify(DefaultRiskScore),
			Summary: fmt.Sprintf("No specialist reviews available; defaulting to %d (%s).", DefaultRiskScore, Classify(DefaultRiskScore)),
		}
	}

	total := 0
	var concerns []string
	seen := make(map[string]bool)
	parts := make([]string, 0, len(reviews))

	for _, r := range reviews {
		total += r.RiskScore
		parts = append(parts, fmt.Sprintf("%s=%d", r.Reviewer, r.RiskScore))
		for _, c := range r.Concerns {
			if !seen[c] {
				seen[c] = true
				concerns = append(concerns, c)
			}
		}
	}

	score := int(math.Round(float64(total) / float64(len(reviews))))
	level := Classify(score)

	return RiskAssessment{
		Score:    score,
		Level:    level,
		Reviews:  slices.Clone(reviews),
		Summary:  fmt.Sprintf("Overall risk %d (%s) from %d reviews: %s.", score, level, len(reviews), strings.Join(parts, ", ")),
		Concerns: concerns,
	}
}

// Reassess returns a new assessment carrying score and summary. Reviews and
// concerns of the receiver are kept for reference.
func (r RiskAssessment) Reassess(score int, summary string) RiskAssessment {
	return RiskAssessment{
		Score:    score,
		Level:    Classify(score),
		Reviews:  slices.Clone(r.Reviews),
		Summary:  summary,
		Concerns: slices.Clone(r.Concerns),
	}
}

// MediumPlaceholder stands in for a risk snapshot that should exist but
// cannot be found.
func MediumPlaceholder() RiskAssessment {
	return RiskAssessment{
		Score:   DefaultRiskScore,
		Level:   Classify(DefaultRiskScore),
		Summary: "Risk snapshot unavailable; assuming medium risk.",
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
