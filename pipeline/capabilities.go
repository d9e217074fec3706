package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/tailored-agentic-units/contract-review/agent"
	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/hitl"
)

// Approver asks a human to decide. *hitl.Gateway satisfies it.
type Approver interface {
	Request(ctx context.Context, kind hitl.Kind, c contract.ContractInfo, risk contract.RiskAssessment, prompt string) (bool, error)
}

// Capabilities are the external collaborators the stages call. The engine
// never calls them itself.
type Capabilities struct {
	Reviewers *agent.Registry
	Proposer  agent.NegotiationProposer
	Approvals Approver

	// Perturbation adds noise to negotiation evaluations. Nil means
	// contract.UniformPerturbation(contract.DefaultPerturbation).
	Perturbation contract.Perturbation

	// Now stamps decisions. Nil means time.Now.
	Now func() time.Time
}

func (c Capabilities) validate() error {
	var errs []error
	if c.Reviewers == nil || c.Reviewers.Len() == 0 {
		errs = append(errs, errors.New("at least one reviewer is required"))
	}
	if c.Proposer == nil {
		errs = append(errs, errors.New("negotiation proposer is required"))
	}
	if c.Approvals == nil {
		errs = append(errs, errors.New("approval gateway is required"))
	}
	return errors.Join(errs...)
}

func (c Capabilities) withDefaults() Capabilities {
	if c.Perturbation == nil {
		c.Perturbation = contract.UniformPerturbation(contract.DefaultPerturbation)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
