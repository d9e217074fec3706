package contract

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
)

const (
	// TargetRiskScore is the score negotiation tries to reach.
	TargetRiskScore = 30

	// MaxNegotiationIterations bounds the propose/evaluate loop.
	MaxNegotiationIterations = 3

	// ReductionPerProposal is the risk reduction credited for each distinct
	// proposal item.
	ReductionPerProposal = 5

	// DefaultPerturbation bounds the random term added to each evaluation.
	DefaultPerturbation = 5

	fallbackRationale = "standard risk mitigation"
)

// NegotiationProposal is one round of suggested amendments.
type NegotiationProposal struct {
	Iteration   int                    `json:"iteration" yaml:"iteration"`
	Proposals   []string               `json:"proposals" yaml:"proposals"`
	TargetScore int                    `json:"target_score" yaml:"target_score"`
	Rationale   string                 `json:"rationale" yaml:"rationale"`
	Changes     map[string]FieldChange `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// DistinctProposals returns the proposal items with duplicates removed,
// keeping first occurrences.
func (p NegotiationProposal) DistinctProposals() []string {
	seen := make(map[string]bool, len(p.Proposals))
	out := make([]string, 0, len(p.Proposals))
	for _, item := range p.Proposals {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// WithChanges returns a copy of p recording the applied contract changes.
func (p NegotiationProposal) WithChanges(changes map[string]FieldChange) NegotiationProposal {
	out := p
	out.Proposals = slices.Clone(p.Proposals)
	out.Changes = maps.Clone(changes)
	return out
}

// FallbackProposal is substituted when the proposer fails or its output cannot
// be used. It leaves the contract unchanged.
func FallbackProposal(iteration int) NegotiationProposal {
	return NegotiationProposal{
		Iteration: iteration,
		Proposals: []string{
			"add liquidated damages for late delivery",
			"cap supplier liability at contract value",
			"require quarterly performance reviews",
		},
		TargetScore: TargetRiskScore,
		Rationale:   fallbackRationale,
	}
}

// EvaluationResult is the outcome of re-scoring a contract after a proposal.
type EvaluationResult struct {
	Iteration int    `json:"iteration" yaml:"iteration"`
	Improved  bool   `json:"improved" yaml:"improved"`
	NewScore  int    `json:"new_score" yaml:"new_score"`
	Comment   string `json:"comment" yaml:"comment"`
	Continue  bool   `json:"continue" yaml:"continue"`
}

// Perturbation yields the random adjustment applied to an evaluation.
type Perturbation func(iteration int) int

// NoPerturbation makes evaluation deterministic.
func NoPerturbation(int) int { return 0 }

// UniformPerturbation draws uniformly from [-bound, +bound]. A bound of zero
// or less disables perturbation.
func UniformPerturbation(bound int) Perturbation {
	if bound <= 0 {
		return NoPerturbation
	}
	return func(int) int {
		return rand.IntN(2*bound+1) - bound
	}
}

// Evaluate re-scores prior after proposal. Each distinct proposal item is
// worth ReductionPerProposal points; the perturbation is added and the result
// clamped to [0,100]. Negotiation continues while the score is above
// TargetRiskScore and the iteration budget is not exhausted.
func Evaluate(prior RiskAssessment, proposal NegotiationProposal, perturb Perturbation) EvaluationResult {
	if perturb == nil {
		perturb = NoPerturbation
	}

	reduction := max(0, ReductionPerProposal*len(proposal.DistinctProposals()))
	delta := perturb(proposal.Iteration)
	score := clamp(prior.Score-reduction+delta, 0, 100)

	result := EvaluationResult{
		Iteration: proposal.Iteration,
		Improved:  score < prior.Score,
		NewScore:  score,
		Continue:  score > TargetRiskScore && proposal.Iteration < MaxNegotiationIterations,
	}

	switch {
	case score <= TargetRiskScore:
		result.Comment = fmt.Sprintf("Iteration %d reached %d, at or below target %d.", proposal.Iteration, score, TargetRiskScore)
	case !result.Continue:
		result.Comment = fmt.Sprintf("Iteration %d ended at %d; iteration limit %d reached.", proposal.Iteration, score, MaxNegotiationIterations)
	case result.Improved:
		result.Comment = fmt.Sprintf("Iteration %d reduced risk from %d to %d.", proposal.Iteration, prior.Score, score)
	default:
		result.Comment = fmt.Sprintf("Iteration %d did not reduce risk (%d to %d).", proposal.Iteration, prior.Score, score)
	}

	return result
}
