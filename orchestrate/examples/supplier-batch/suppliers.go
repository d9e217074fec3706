package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

type SupplierTemplate struct {
	Supplier    string
	Description string
	MinValue    float64
	MaxValue    float64
	Terms       []int
	Payments    []string
	Deliveries  []string
}

var supplierTemplates = []SupplierTemplate{
	{
		Supplier:    "Northwind Components",
		Description: "Machined aluminium housings for sensor enclosures",
		MinValue:    40_000,
		MaxValue:    180_000,
		Terms:       []int{12, 24},
		Payments:    []string{"Net 30", "Net 45", "Net 60"},
		Deliveries:  []string{"DAP", "FOB", "CIF"},
	},
	{
		Supplier:    "Helios Power Systems",
		Description: "Battery modules and charge controllers",
		MinValue:    200_000,
		MaxValue:    900_000,
		Terms:       []int{24, 36, 48},
		Payments:    []string{"Net 30", "Net 15", "30% upfront, balance Net 30"},
		Deliveries:  []string{"DAP", "EXW", ""},
	},
	{
		Supplier:    "Meridian Logistics",
		Description: "Regional freight and warehousing",
		MinValue:    120_000,
		MaxValue:    600_000,
		Terms:       []int{12, 36, 60},
		Payments:    []string{"Net 30", "Net 10"},
		Deliveries:  []string{"DDP", ""},
	},
	{
		Supplier:    "Cobalt Software",
		Description: "Fleet telemetry platform subscription",
		MinValue:    60_000,
		MaxValue:    400_000,
		Terms:       []int{12, 36},
		Payments:    []string{"Annual in advance", "Net 30"},
		Deliveries:  []string{"Electronic delivery"},
	},
	{
		Supplier:    "Atlas Heavy Industries",
		Description: "Custom press line and installation",
		MinValue:    900_000,
		MaxValue:    3_500_000,
		Terms:       []int{36, 60, 72},
		Payments:    []string{"40% advance, milestones", "Net 60"},
		Deliveries:  []string{"DAP, installed", "EXW"},
	},
	{
		Supplier:    "Verdant Facilities",
		Description: "Janitorial and grounds maintenance",
		MinValue:    25_000,
		MaxValue:    90_000,
		Terms:       []int{12},
		Payments:    []string{"Net 30"},
		Deliveries:  []string{"On site"},
	},
}

// GenerateContracts draws n contracts, one per template, in template order.
func GenerateContracts(rng *rand.Rand, n int) []contract.ContractInfo {
	contracts := make([]contract.ContractInfo, 0, n)
	for _, t := range supplierTemplates[:n] {
		value := t.MinValue + rng.Float64()*(t.MaxValue-t.MinValue)
		contracts = append(contracts, contract.ContractInfo{
			Supplier:       t.Supplier,
			Value:          float64(int(value/1000)) * 1000,
			Currency:       "USD",
			TermMonths:     pick(rng, t.Terms),
			PaymentTerms:   pick(rng, t.Payments),
			DeliveryTerms:  pick(rng, t.Deliveries),
			WarrantyMonths: pick(rng, []int{0, 6, 12, 24}),
			PenaltyClause:  rng.IntN(2) == 0,
			AutoRenewal:    rng.IntN(3) == 0,
			Description:    t.Description,
		})
	}
	return contracts
}

func pick[T any](rng *rand.Rand, options []T) T {
	return options[rng.IntN(len(options))]
}

func formatValue(c contract.ContractInfo) string {
	whole := int(c.Value)
	if whole >= 1_000_000 {
		return fmt.Sprintf("%s %d,%03d,%03d", c.Currency, whole/1_000_000, whole/1000%1000, whole%1000)
	}
	if whole >= 1000 {
		return fmt.Sprintf("%s %d,%03d", c.Currency, whole/1000, whole%1000)
	}
	return fmt.Sprintf("%s %d", c.Currency, whole)
}
