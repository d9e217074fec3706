package main

import (
	"flag"
	"fmt"

	"github.com/tailored-agentic-units/contract-review/agent"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
)

type BatchConfig struct {
	Contracts int
	Seed      uint64
	Approval  string
	FailAt    agent.Specialty
	Verbose   bool
}

func ParseConfig() (*BatchConfig, error) {
	cfg := &BatchConfig{}

	var failAt string

	flag.IntVar(&cfg.Contracts, "contracts", 3, "Number of supplier contracts to review (1-6)")
	flag.Uint64Var(&cfg.Seed, "seed", 7, "Seed for contract generation and evaluation noise")
	flag.StringVar(&cfg.Approval, "approval", config.TransportAutoApprove, "Approval transport: auto-approve, auto-reject, or console")
	flag.StringVar(&failAt, "fail-at", "", "Make one specialist fail to demonstrate fallback reviews: legal, finance, or procurement")
	flag.BoolVar(&cfg.Verbose, "v", false, "Enable verbose mode with SlogObserver")

	flag.Parse()

	if cfg.Contracts < 1 || cfg.Contracts > len(supplierTemplates) {
		return nil, fmt.Errorf("contracts must be between 1 and %d (number of supplier templates), got %d", len(supplierTemplates), cfg.Contracts)
	}

	switch cfg.Approval {
	case config.TransportAutoApprove, config.TransportAutoReject, config.TransportConsole:
	default:
		return nil, fmt.Errorf("approval must be auto-approve, auto-reject, or console, got %s", cfg.Approval)
	}

	if failAt != "" {
		s, err := agent.ParseSpecialty(failAt)
		if err != nil {
			return nil, fmt.Errorf("fail-at: %w", err)
		}
		cfg.FailAt = s
	}

	return cfg, nil
}

func (c *BatchConfig) ObserverName() string {
	if c.Verbose {
		return "slog"
	}
	return "noop"
}
