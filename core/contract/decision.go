package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Decision labels the outcome of a run.
type Decision string

const (
	DecisionApproved       Decision = "Approved"
	DecisionRejected       Decision = "Rejected"
	DecisionEscalated      Decision = "Escalated"
	DecisionRequiresReview Decision = "RequiresReview"
)

// FinalDecision is the terminal output of a run. Exactly one is produced per
// successful run.
type FinalDecision struct {
	RunID            string                `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Decision         Decision              `json:"decision" yaml:"decision"`
	Contract         ContractInfo          `json:"contract" yaml:"contract"`
	OriginalContract *ContractInfo         `json:"original_contract,omitempty" yaml:"original_contract,omitempty"`
	OriginalScore    *int                  `json:"original_score,omitempty" yaml:"original_score,omitempty"`
	FinalScore       int                   `json:"final_score" yaml:"final_score"`
	FinalLevel       RiskLevel             `json:"final_level" yaml:"final_level"`
	Summary          string                `json:"summary" yaml:"summary"`
	NextActions      []string              `json:"next_actions" yaml:"next_actions"`
	Negotiations     []NegotiationProposal `json:"negotiations,omitempty" yaml:"negotiations,omitempty"`
	Evaluations      []EvaluationResult    `json:"evaluations,omitempty" yaml:"evaluations,omitempty"`
	DecidedAt        time.Time             `json:"decided_at" yaml:"decided_at"`
}

// Negotiated reports whether the decision went through the negotiation loop.
func (d FinalDecision) Negotiated() bool {
	return len(d.Negotiations) > 0
}

// ScoreDelta returns the change from the original score, or zero when no
// original score was recorded.
func (d FinalDecision) ScoreDelta() int {
	if d.OriginalScore == nil {
		return 0
	}
	return d.FinalScore - *d.OriginalScore
}

// Changes reports every contract field that negotiation altered.
func (d FinalDecision) Changes() map[string]FieldChange {
	if d.OriginalContract == nil {
		return map[string]FieldChange{}
	}
	return d.OriginalContract.Diff(d.Contract)
}

// Describe renders a one-paragraph human-readable account of the decision.
func (d FinalDecision) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%s %.2f), final risk %d (%s).",
		d.Decision, d.Contract.Supplier, d.Contract.Currency, d.Contract.Value, d.FinalScore, d.FinalLevel)

	if d.OriginalScore != nil {
		fmt.Fprintf(&b, " Original risk %d, change %+d.", *d.OriginalScore, d.ScoreDelta())
	}

	if changes := d.Changes(); len(changes) > 0 {
		keys := make([]string, 0, len(changes))
		for k := range changes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %s→%s", k, changes[k].Before, changes[k].After))
		}
		fmt.Fprintf(&b, " Amended: %s.", strings.Join(parts, "; "))
	}

	return b.String()
}
