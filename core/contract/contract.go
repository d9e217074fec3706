// Package contract defines the immutable values that flow along the edges of
// the contract-review workflow: the contract itself, specialist reviews,
// aggregated risk, negotiation proposals and their evaluations, and the
// terminal decision.
//
// Values are never mutated in place. Operations that "change" a value return
// a new one:
//
//	revised := original.With(func(c *contract.ContractInfo) {
//	    c.PenaltyClause = true
//	})
//	changes := original.Diff(revised) // {"penalty_clause": {Before: "false", After: "true"}}
package contract

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidContract is wrapped by Validate failures.
var ErrInvalidContract = errors.New("invalid contract")

const defaultCurrency = "USD"

// ContractInfo describes the commercial terms under review.
type ContractInfo struct {
	Supplier       string  `json:"supplier" yaml:"supplier"`
	Value          float64 `json:"value" yaml:"value"`
	Currency       string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	TermMonths     int     `json:"term_months" yaml:"term_months"`
	PaymentTerms   string  `json:"payment_terms" yaml:"payment_terms"`
	DeliveryTerms  string  `json:"delivery_terms" yaml:"delivery_terms"`
	WarrantyMonths int     `json:"warranty_months" yaml:"warranty_months"`
	PenaltyClause  bool    `json:"penalty_clause" yaml:"penalty_clause"`
	AutoRenewal    bool    `json:"auto_renewal" yaml:"auto_renewal"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// FieldChange records a single field before and after a negotiated amendment.
type FieldChange struct {
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

// With returns a copy of c with fn applied. The receiver is left untouched.
func (c ContractInfo) With(fn func(*ContractInfo)) ContractInfo {
	next := c
	fn(&next)
	return next
}

// Normalized returns a copy with defaults filled in (currency).
func (c ContractInfo) Normalized() ContractInfo {
	if c.Currency != "" {
		return c
	}
	return c.With(func(n *ContractInfo) { n.Currency = defaultCurrency })
}

// Validate rejects contracts the workflow cannot reason about.
func (c ContractInfo) Validate() error {
	switch {
	case c.Supplier == "":
		return fmt.Errorf("%w: supplier is required", ErrInvalidContract)
	case c.Value < 0:
		return fmt.Errorf("%w: value must not be negative, got %.2f", ErrInvalidContract, c.Value)
	case c.TermMonths < 0:
		return fmt.Errorf("%w: term must not be negative, got %d", ErrInvalidContract, c.TermMonths)
	case c.WarrantyMonths < 0:
		return fmt.Errorf("%w: warranty must not be negative, got %d", ErrInvalidContract, c.WarrantyMonths)
	}
	return nil
}

// Fields renders the comparable fields keyed by their wire names.
func (c ContractInfo) Fields() map[string]string {
	return map[string]string{
		"supplier":        c.Supplier,
		"value":           strconv.FormatFloat(c.Value, 'f', 2, 64),
		"currency":        c.Currency,
		"term_months":     strconv.Itoa(c.TermMonths),
		"payment_terms":   c.PaymentTerms,
		"delivery_terms":  c.DeliveryTerms,
		"warranty_months": strconv.Itoa(c.WarrantyMonths),
		"penalty_clause":  strconv.FormatBool(c.PenaltyClause),
		"auto_renewal":    strconv.FormatBool(c.AutoRenewal),
		"description":     c.Description,
	}
}

// Diff reports the fields that differ between c and after. An empty map means
// the contracts are equal.
func (c ContractInfo) Diff(after ContractInfo) map[string]FieldChange {
	before := c.Fields()
	next := after.Fields()

	changes := make(map[string]FieldChange)
	for key, was := range before {
		if now := next[key]; now != was {
			changes[key] = FieldChange{Before: was, After: now}
		}
	}
	return changes
}

// MergeChanges combines change sets from successive amendments, keeping the
// earliest Before and the latest After for each field.
func MergeChanges(sets ...map[string]FieldChange) map[string]FieldChange {
	merged := make(map[string]FieldChange)
	for _, set := range sets {
		for key, change := range set {
			if prior, ok := merged[key]; ok {
				change.Before = prior.Before
			}
			merged[key] = change
		}
	}
	for key, change := range merged {
		if change.Before == change.After {
			delete(merged, key)
		}
	}
	return merged
}
