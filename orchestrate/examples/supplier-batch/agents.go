package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/contract-review/agent"
	"github.com/tailored-agentic-units/contract-review/core/contract"
)

var errModelUnavailable = errors.New("model endpoint unavailable")

// scriptedCompleter stands in for a language model. It answers a review
// prompt with the rule reviewer's verdict wrapped in conversational text,
// so responses pass through the same JSON extraction and schema checks a
// real model's would.
func scriptedCompleter(specialty agent.Specialty, c contract.ContractInfo, fail bool) agent.Completer {
	return agent.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		if fail {
			return "", errModelUnavailable
		}

		review, err := agent.RuleReviewer{Specialty: specialty}.Review(ctx, c)
		if err != nil {
			return "", err
		}

		body, err := json.MarshalIndent(review, "", "  ")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Here is my %s assessment of %s.\n\n```json\n%s\n```\n", specialty, c.Supplier, body), nil
	})
}

// InitializeReviewers builds one completion-backed reviewer per specialty
// for contract c.
func InitializeReviewers(cfg *BatchConfig, c contract.ContractInfo) *agent.Registry {
	return agent.DefaultRegistry(func(s agent.Specialty) agent.Reviewer {
		return agent.CompletionReviewer{
			Completer: scriptedCompleter(s, c, s == cfg.FailAt),
			Specialty: s,
		}
	})
}
