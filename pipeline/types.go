package pipeline

import "github.com/tailored-agentic-units/contract-review/core/contract"

// Reviewed is one specialist's view of the contract.
type Reviewed struct {
	Contract contract.ContractInfo `json:"contract"`
	Review   contract.ReviewResult `json:"review"`
}

// Assessment is the contract with its current risk. Conditional edges are
// expressed over its JSON shape: output.risk.score, output.evaluation.continue.
type Assessment struct {
	Contract   contract.ContractInfo      `json:"contract"`
	Risk       contract.RiskAssessment    `json:"risk"`
	Evaluation *contract.EvaluationResult `json:"evaluation,omitempty"`
}

// Proposed is the outcome of a negotiation round before evaluation.
type Proposed struct {
	Contract contract.ContractInfo        `json:"contract"`
	Proposal contract.NegotiationProposal `json:"proposal"`
	Prior    contract.RiskAssessment      `json:"prior"`
}
