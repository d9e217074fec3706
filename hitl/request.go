package hitl

import (
	"fmt"
	"time"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

// Kind identifies which decision point raised a request.
type Kind string

const (
	FinalApproval      Kind = "final-approval"
	Escalation         Kind = "escalation"
	RejectConfirmation Kind = "reject-confirmation"
)

// Request is one question put to the approver.
type Request struct {
	ID       string                  `json:"id"`
	Kind     Kind                    `json:"kind"`
	Contract contract.ContractInfo   `json:"contract"`
	Risk     contract.RiskAssessment `json:"risk"`
	Prompt   string                  `json:"prompt"`
	AskedAt  time.Time               `json:"asked_at"`
	Deadline time.Time               `json:"deadline"`
}

// Summary renders the request on one line.
func (r Request) Summary() string {
	return fmt.Sprintf("[%s] %s: %s (risk %d, %s)", r.Kind, r.Contract.Supplier, r.Prompt, r.Risk.Score, r.Risk.Level)
}
