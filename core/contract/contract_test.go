package contract_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

func sampleContract() contract.ContractInfo {
	return contract.ContractInfo{
		Supplier:       "Acme Components",
		Value:          250000,
		Currency:       "USD",
		TermMonths:     36,
		PaymentTerms:   "Net 30",
		DeliveryTerms:  "FOB destination",
		WarrantyMonths: 12,
		PenaltyClause:  false,
		AutoRenewal:    true,
	}
}

func TestContractInfo_WithCopies(t *testing.T) {
	original := sampleContract()

	revised := original.With(func(c *contract.ContractInfo) {
		c.PenaltyClause = true
		c.AutoRenewal = false
	})

	assert.False(t, original.PenaltyClause)
	assert.True(t, original.AutoRenewal)
	assert.True(t, revised.PenaltyClause)
	assert.False(t, revised.AutoRenewal)
}

func TestContractInfo_Diff(t *testing.T) {
	original := sampleContract()
	revised := original.With(func(c *contract.ContractInfo) {
		c.WarrantyMonths = 24
		c.PenaltyClause = true
	})

	changes := original.Diff(revised)

	require.Len(t, changes, 2)
	assert.Equal(t, contract.FieldChange{Before: "12", After: "24"}, changes["warranty_months"])
	assert.Equal(t, contract.FieldChange{Before: "false", After: "true"}, changes["penalty_clause"])
	assert.Empty(t, original.Diff(original))
}

func TestContractInfo_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*contract.ContractInfo)
		wantErr bool
	}{
		{name: "valid", mutate: func(*contract.ContractInfo) {}},
		{name: "missing supplier", mutate: func(c *contract.ContractInfo) { c.Supplier = "" }, wantErr: true},
		{name: "negative value", mutate: func(c *contract.ContractInfo) { c.Value = -1 }, wantErr: true},
		{name: "negative term", mutate: func(c *contract.ContractInfo) { c.TermMonths = -3 }, wantErr: true},
		{name: "negative warranty", mutate: func(c *contract.ContractInfo) { c.WarrantyMonths = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sampleContract().With(tt.mutate).Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, contract.ErrInvalidContract), "error = %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestContractInfo_Normalized(t *testing.T) {
	c := sampleContract().With(func(c *contract.ContractInfo) { c.Currency = "" })
	assert.Equal(t, "USD", c.Normalized().Currency)
	assert.Equal(t, "EUR", c.With(func(c *contract.ContractInfo) { c.Currency = "EUR" }).Normalized().Currency)
}

func TestMergeChanges(t *testing.T) {
	first := map[string]contract.FieldChange{"warranty_months": {Before: "12", After: "18"}}
	second := map[string]contract.FieldChange{
		"warranty_months": {Before: "18", After: "24"},
		"auto_renewal":    {Before: "true", After: "false"},
	}
	third := map[string]contract.FieldChange{"auto_renewal": {Before: "false", After: "true"}}

	merged := contract.MergeChanges(first, second, third)

	assert.Equal(t, map[string]contract.FieldChange{
		"warranty_months": {Before: "12", After: "24"},
	}, merged)
}

func TestFinalDecision_Describe(t *testing.T) {
	original := sampleContract()
	negotiated := original.With(func(c *contract.ContractInfo) { c.PenaltyClause = true })
	score := 55

	d := contract.FinalDecision{
		Decision:         contract.DecisionEscalated,
		Contract:         negotiated,
		OriginalContract: &original,
		OriginalScore:    &score,
		FinalScore:       35,
		FinalLevel:       contract.RiskMedium,
		Negotiations:     []contract.NegotiationProposal{contract.FallbackProposal(1)},
		DecidedAt:        time.Now(),
	}

	assert.True(t, d.Negotiated())
	assert.Equal(t, -20, d.ScoreDelta())
	assert.Contains(t, d.Describe(), "penalty_clause false→true")
	assert.Contains(t, d.Describe(), "Original risk 55")
}
