package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

// CompletionReviewer reviews through a text-completion capability.
type CompletionReviewer struct {
	Completer Completer
	Specialty Specialty
}

func (r CompletionReviewer) Review(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error) {
	prompt, err := reviewPrompt(r.Specialty, c)
	if err != nil {
		return contract.ReviewResult{}, err
	}

	text, err := r.Completer.Complete(ctx, prompt)
	if err != nil {
		return contract.ReviewResult{}, fmt.Errorf("%s review: %w", r.Specialty, err)
	}

	result, err := DecodeReview(text)
	if err != nil {
		return contract.ReviewResult{}, fmt.Errorf("%s review: %w", r.Specialty, err)
	}
	return result.Relabel(string(r.Specialty)), nil
}

// CompletionProposer proposes amendments through a text-completion
// capability.
type CompletionProposer struct {
	Completer Completer
}

func (p CompletionProposer) Propose(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (Proposal, error) {
	prompt, err := proposalPrompt(c, risk, iteration)
	if err != nil {
		return Proposal{}, err
	}

	text, err := p.Completer.Complete(ctx, prompt)
	if err != nil {
		return Proposal{}, fmt.Errorf("negotiation proposal: %w", err)
	}

	proposal, err := DecodeProposal(text, c, iteration)
	if err != nil {
		return Proposal{}, fmt.Errorf("negotiation proposal: %w", err)
	}
	return proposal, nil
}

func reviewPrompt(s Specialty, c contract.ContractInfo) (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(s.Instructions())
	b.WriteString("\n\nContract:\n")
	b.Write(data)
	b.WriteString("\n\nRespond with a single JSON object: ")
	b.WriteString(`{"opinion": string, "risk_score": integer 0-100, "concerns": [string], "recommendations": [string]}`)
	return b.String(), nil
}

func proposalPrompt(c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Negotiation round %d of %d. Current risk score %d (%s); target %d or below.\n",
		iteration, contract.MaxNegotiationIterations, risk.Score, risk.Level, contract.TargetRiskScore)
	if len(risk.Concerns) > 0 {
		fmt.Fprintf(&b, "Open concerns: %s.\n", strings.Join(risk.Concerns, "; "))
	}
	b.WriteString("\nContract:\n")
	b.Write(data)
	b.WriteString("\n\nPropose amendments that reduce risk. Respond with a single JSON object: ")
	b.WriteString(`{"proposals": [string], "rationale": string, "amendments": {contract field: new value}}`)
	return b.String(), nil
}
