package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

const (
	ruleBaseScore = 30

	// MinWarrantyMonths is the warranty the rule reviewers consider adequate.
	MinWarrantyMonths = 12

	// LongTermMonths marks a commitment as long.
	LongTermMonths = 36

	// LargeValue and MaterialValue are the finance review value tiers.
	LargeValue    = 1_000_000
	MaterialValue = 250_000

	maxFixesPerRound = 2
)

var netDays = regexp.MustCompile(`(?i)net\s*(\d+)`)

// RuleReviewer scores a contract from fixed, field-driven rules for its
// specialty. Results are deterministic.
type RuleReviewer struct {
	Specialty Specialty
}

type finding struct {
	weight         int
	concern        string
	recommendation string
}

func (r RuleReviewer) Review(ctx context.Context, c contract.ContractInfo) (contract.ReviewResult, error) {
	if err := ctx.Err(); err != nil {
		return contract.ReviewResult{}, err
	}

	var findings []finding
	switch r.Specialty {
	case Legal:
		findings = legalFindings(c)
	case Finance:
		findings = financeFindings(c)
	case Procurement:
		findings = procurementFindings(c)
	default:
		return contract.ReviewResult{}, fmt.Errorf("%w: no rules for %q", ErrReviewerNotFound, r.Specialty)
	}

	result := contract.ReviewResult{
		Reviewer:  string(r.Specialty),
		RiskScore: ruleBaseScore,
	}
	for _, f := range findings {
		result.RiskScore += f.weight
		result.Concerns = append(result.Concerns, f.concern)
		result.Recommendations = append(result.Recommendations, f.recommendation)
	}
	result.RiskScore = min(max(result.RiskScore, 0), 100)

	if len(findings) == 0 {
		result.Opinion = fmt.Sprintf("%s terms are acceptable.", r.Specialty)
	} else {
		result.Opinion = fmt.Sprintf("%s review found %d issue(s).", r.Specialty, len(findings))
	}
	return result, nil
}

func legalFindings(c contract.ContractInfo) []finding {
	var out []finding
	if !c.PenaltyClause {
		out = append(out, finding{20, "no penalty clause for non-performance", "add a penalty clause for late or failed delivery"})
	}
	if c.AutoRenewal {
		out = append(out, finding{15, "automatic renewal without review", "require explicit renewal approval"})
	}
	if c.WarrantyMonths < MinWarrantyMonths {
		out = append(out, finding{10, "warranty below 12 months", "extend warranty to at least 12 months"})
	}
	if c.TermMonths > LongTermMonths {
		out = append(out, finding{10, "long commitment term", "add a termination for convenience clause"})
	}
	return out
}

func financeFindings(c contract.ContractInfo) []finding {
	var out []finding
	switch {
	case c.Value > LargeValue:
		out = append(out, finding{25, "contract value exceeds 1,000,000", "stage payments against milestones"})
	case c.Value > MaterialValue:
		out = append(out, finding{15, "material contract value", "require budget owner sign-off"})
	}
	if upfrontPayment(c.PaymentTerms) {
		out = append(out, finding{20, "payment due up front", "move to Net 30 or longer payment terms"})
	} else if days, ok := paymentDays(c.PaymentTerms); ok && days < 30 {
		out = append(out, finding{10, "short payment window", "negotiate Net 30 or longer payment terms"})
	}
	if c.TermMonths > LongTermMonths {
		out = append(out, finding{10, "multi-year financial commitment", "add annual price review"})
	}
	return out
}

func procurementFindings(c contract.ContractInfo) []finding {
	var out []finding
	if strings.TrimSpace(c.DeliveryTerms) == "" {
		out = append(out, finding{15, "delivery terms unspecified", "define delivery terms and schedule"})
	}
	if c.WarrantyMonths < MinWarrantyMonths {
		out = append(out, finding{15, "insufficient warranty coverage", "extend warranty to at least 12 months"})
	}
	if c.AutoRenewal {
		out = append(out, finding{10, "supplier lock-in through automatic renewal", "remove automatic renewal"})
	}
	if !c.PenaltyClause {
		out = append(out, finding{10, "no remedy for missed delivery", "add liquidated damages for late delivery"})
	}
	return out
}

func upfrontPayment(terms string) bool {
	t := strings.ToLower(terms)
	return strings.Contains(t, "advance") || strings.Contains(t, "upfront") || strings.Contains(t, "up front") || strings.Contains(t, "prepay")
}

func paymentDays(terms string) (int, bool) {
	m := netDays.FindStringSubmatch(terms)
	if m == nil {
		return 0, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return days, true
}

// RuleProposer fixes up to two contract weaknesses per round, in a fixed
// order. When nothing is left to fix it proposes a single monitoring item,
// so every proposal carries at least one item.
type RuleProposer struct{}

type fix struct {
	applies  func(contract.ContractInfo) bool
	proposal string
	apply    func(*contract.ContractInfo)
}

var fixes = []fix{
	{
		applies:  func(c contract.ContractInfo) bool { return !c.PenaltyClause },
		proposal: "add a penalty clause for late or failed delivery",
		apply:    func(c *contract.ContractInfo) { c.PenaltyClause = true },
	},
	{
		applies:  func(c contract.ContractInfo) bool { return c.AutoRenewal },
		proposal: "replace automatic renewal with explicit renewal approval",
		apply:    func(c *contract.ContractInfo) { c.AutoRenewal = false },
	},
	{
		applies:  func(c contract.ContractInfo) bool { return c.WarrantyMonths < MinWarrantyMonths },
		proposal: "extend warranty to 12 months",
		apply:    func(c *contract.ContractInfo) { c.WarrantyMonths = MinWarrantyMonths },
	},
	{
		applies: func(c contract.ContractInfo) bool {
			if upfrontPayment(c.PaymentTerms) {
				return true
			}
			days, ok := paymentDays(c.PaymentTerms)
			return ok && days < 30
		},
		proposal: "move payment terms to Net 30",
		apply:    func(c *contract.ContractInfo) { c.PaymentTerms = "Net 30" },
	},
	{
		applies:  func(c contract.ContractInfo) bool { return strings.TrimSpace(c.DeliveryTerms) == "" },
		proposal: "define delivery terms as DAP with a fixed schedule",
		apply:    func(c *contract.ContractInfo) { c.DeliveryTerms = "DAP, scheduled" },
	},
	{
		applies:  func(c contract.ContractInfo) bool { return c.TermMonths > LongTermMonths },
		proposal: "shorten the initial term to 36 months",
		apply:    func(c *contract.ContractInfo) { c.TermMonths = LongTermMonths },
	},
}

func (RuleProposer) Propose(ctx context.Context, c contract.ContractInfo, risk contract.RiskAssessment, iteration int) (Proposal, error) {
	if err := ctx.Err(); err != nil {
		return Proposal{}, err
	}

	amended := c
	var items []string
	for _, f := range fixes {
		if len(items) == maxFixesPerRound {
			break
		}
		if f.applies(amended) {
			amended = amended.With(f.apply)
			items = append(items, f.proposal)
		}
	}
	if len(items) == 0 {
		items = []string{"require quarterly performance reviews"}
	}

	return Proposal{
		Proposal: contract.NegotiationProposal{
			Iteration:   iteration,
			Proposals:   items,
			TargetScore: contract.TargetRiskScore,
			Rationale:   fmt.Sprintf("reduce risk from %d toward %d", risk.Score, contract.TargetRiskScore),
			Changes:     c.Diff(amended),
		},
		Contract: amended,
	}, nil
}

// RuleRegistry returns a registry of RuleReviewers for every built-in
// specialty.
func RuleRegistry() *Registry {
	return DefaultRegistry(func(s Specialty) Reviewer { return RuleReviewer{Specialty: s} })
}
