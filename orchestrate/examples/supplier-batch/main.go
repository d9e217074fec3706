package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/hitl"
	"github.com/tailored-agentic-units/contract-review/kernel"
	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
	"github.com/tailored-agentic-units/contract-review/pipeline"
)

func main() {
	cfg, err := ParseConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Verbose {
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
		observability.RegisterObserver("slog", observability.NewSlogObserver(slog.New(handler)))
	}

	fmt.Println("Supplier Contract Batch Review")
	fmt.Printf("Generating %d contracts (seed %d)...\n\n", cfg.Contracts, cfg.Seed)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	contracts := GenerateContracts(rng, cfg.Contracts)

	// One console reader serves every contract in the batch.
	var opts []kernel.Option
	if cfg.Approval == config.TransportConsole {
		opts = append(opts, kernel.WithTransport(hitl.NewConsoleTransport(os.Stdin, os.Stdout)))
	}

	ctx := context.Background()
	startTime := time.Now()
	tally := make(map[contract.Decision]int)
	var negotiated int

	for i, c := range contracts {
		fmt.Printf("=== Contract %d/%d: %s ===\n", i+1, len(contracts), c.Supplier)
		fmt.Printf("  Value: %s over %d months\n", formatValue(c), c.TermMonths)
		fmt.Printf("  Payment: %s, Delivery: %s, Warranty: %d months\n", c.PaymentTerms, orNone(c.DeliveryTerms), c.WarrantyMonths)

		runtime, err := kernel.New(&kernel.Config{
			Graph:    config.GraphConfig{Observer: cfg.ObserverName()},
			Approval: config.ApprovalConfig{Transport: cfg.Approval, Timeout: 30 * time.Second},
		}, append([]kernel.Option{
			kernel.WithReviewers(InitializeReviewers(cfg, c)),
			kernel.WithPerturbation(seeded(rng, contract.DefaultPerturbation)),
		}, opts...)...)
		if err != nil {
			log.Fatalf("Failed to create kernel runtime: %v", err)
		}

		result, err := runtime.Run(ctx, c)
		if err != nil {
			fmt.Printf("  ✗ Review failed: %v\n\n", err)
			continue
		}

		d := result.Decision
		tally[d.Decision]++
		if d.Negotiated() {
			negotiated++
			fmt.Printf("  Negotiated %d rounds: risk %d -> %d\n",
				result.Run.Passes[pipeline.LoopNegotiation], *d.OriginalScore, d.FinalScore)
			for field, change := range d.Changes() {
				fmt.Printf("    %s: %s -> %s\n", field, orNone(change.Before), change.After)
			}
		}

		fmt.Printf("\nFinal Decision: %s (risk %d, %s)\n", d.Decision, d.FinalScore, d.FinalLevel)
		for _, action := range d.NextActions {
			fmt.Printf("  - %s\n", action)
		}
		fmt.Println()
	}

	duration := time.Since(startTime)

	fmt.Println("Summary:")
	fmt.Printf("- Contracts reviewed: %d\n", len(contracts))
	for _, d := range []contract.Decision{
		contract.DecisionApproved,
		contract.DecisionRequiresReview,
		contract.DecisionEscalated,
		contract.DecisionRejected,
	} {
		fmt.Printf("- %s: %d\n", d, tally[d])
	}
	fmt.Printf("- Negotiated: %d\n", negotiated)
	fmt.Printf("- Total processing time: %s\n", duration.Round(time.Millisecond))
}

// seeded draws evaluation noise from rng so a batch is reproducible.
func seeded(rng *rand.Rand, bound int) contract.Perturbation {
	return func(int) int {
		return rng.IntN(2*bound+1) - bound
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
