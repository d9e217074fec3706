package agent

import (
	"context"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

// Reviewer assesses a contract from one specialist perspective.
type Reviewer interface {
	Review(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error)
}

// ReviewerFunc adapts a function to Reviewer.
type ReviewerFunc func(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error)

func (f ReviewerFunc) Review(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error) {
	return f(ctx, c)
}

// Proposal is a negotiation round's outcome: the suggested amendments and
// the contract with them applied.
type Proposal struct {
	Proposal contract.NegotiationProposal
	Contract contract.ContractInfo
}

// NegotiationProposer suggests amendments that lower the risk of c.
// iteration is 1-based.
type NegotiationProposer interface {
	Propose(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (Proposal, error)
}

// ProposerFunc adapts a function to NegotiationProposer.
type ProposerFunc func(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (Proposal, error)

func (f ProposerFunc) Propose(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (Proposal, error) {
	return f(ctx, c, risk, iteration)
}

// Completer produces a text completion for prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
