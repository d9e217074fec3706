package agent

import (
	"fmt"
	"strings"
)

// Specialty identifies a domain reviewer.
type Specialty string

const (
	Legal       Specialty = "Legal"
	Finance     Specialty = "Finance"
	Procurement Specialty = "Procurement"
)

// Specialties returns the built-in specialties in their canonical order.
func Specialties() []Specialty {
	return []Specialty{Legal, Finance, Procurement}
}

// ParseSpecialty matches name case-insensitively against the built-in
// specialties.
func ParseSpecialty(name string) (Specialty, error) {
	for _, s := range Specialties() {
		if strings.EqualFold(string(s), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown specialty %q", name)
}

// Instructions returns the review brief for the specialty.
func (s Specialty) Instructions() string {
	switch s {
	case Legal:
		return "You are a contracts lawyer. Assess liability exposure, penalty and " +
			"termination clauses, automatic renewal, warranty obligations and " +
			"enforceability. Higher scores mean greater legal risk."
	case Finance:
		return "You are a financial controller. Assess contract value, payment terms, " +
			"cash-flow impact, currency exposure and commitment length. Higher " +
			"scores mean greater financial risk."
	case Procurement:
		return "You are a procurement lead. Assess supplier reliability, delivery " +
			"terms, warranty coverage, lock-in and renewal conditions. Higher " +
			"scores mean greater supply risk."
	default:
		return fmt.Sprintf("You are a %s specialist. Assess the contract's risk in your domain.", s)
	}
}

// Stage returns the pipeline stage name for the specialty's review.
func (s Specialty) Stage() string {
	return "review-" + strings.ToLower(string(s))
}
