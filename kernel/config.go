package kernel

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
	"github.com/tailored-agentic-units/contract-review/pipeline"
)

// EnvPrefix prefixes environment overrides, e.g.
// CONTRACT_REVIEW_APPROVAL_TIMEOUT=30s.
const EnvPrefix = "CONTRACT_REVIEW"

// Config holds initialization parameters for every run subsystem.
//
// Example YAML:
//
//	graph:
//	  observer: slog
//	  strict_conditions: true
//	approval:
//	  timeout: 5m
//	  transport: console
//	negotiation:
//	  perturbation: 5
//	reviewers: [Legal, Finance, Procurement]
type Config struct {
	Graph       config.GraphConfig       `json:"graph" yaml:"graph" mapstructure:"graph"`
	Approval    config.ApprovalConfig    `json:"approval" yaml:"approval" mapstructure:"approval"`
	Negotiation config.NegotiationConfig `json:"negotiation" yaml:"negotiation" mapstructure:"negotiation"`
	Hub         config.HubConfig         `json:"hub" yaml:"hub" mapstructure:"hub"`

	// Reviewers lists the specialties to run, in fan-in order. Empty means
	// every built-in specialty.
	Reviewers []string `json:"reviewers,omitempty" yaml:"reviewers,omitempty" mapstructure:"reviewers"`
}

// DefaultConfig returns a Config with defaults for every subsystem.
func DefaultConfig() Config {
	return Config{
		Graph:       config.DefaultGraphConfig(pipeline.GraphName),
		Approval:    config.DefaultApprovalConfig(),
		Negotiation: config.DefaultNegotiationConfig(),
		Hub:         config.DefaultHubConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Graph.Merge(&source.Graph)
	c.Approval.Merge(&source.Approval)
	c.Negotiation.Merge(&source.Negotiation)
	c.Hub.Merge(&source.Hub)

	if len(source.Reviewers) > 0 {
		c.Reviewers = source.Reviewers
	}
}

// LoadConfig reads a YAML or JSON config file, applies CONTRACT_REVIEW_*
// environment overrides, and merges the result onto defaults. An empty
// filename loads defaults and environment only.
func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Merge(&loaded)
	return &cfg, nil
}

// envKeys are the settings that may come from the environment alone.
var envKeys = []string{
	"graph.name",
	"graph.observer",
	"graph.max_steps",
	"graph.strict_conditions",
	"graph.parallel.max_workers",
	"graph.parallel.fail_fast",
	"approval.timeout",
	"approval.transport",
	"approval.listen",
	"negotiation.perturbation",
	"hub.channel_buffer_size",
}

// LoadContract reads a YAML contract file.
func LoadContract(filename string) (contract.ContractInfo, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return contract.ContractInfo{}, fmt.Errorf("failed to read contract file: %w", err)
	}
	return ParseContract(data)
}

// ParseContract decodes a YAML (or JSON) contract document. Unknown fields
// are rejected.
func ParseContract(data []byte) (contract.ContractInfo, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c contract.ContractInfo
	if err := dec.Decode(&c); err != nil {
		return contract.ContractInfo{}, fmt.Errorf("failed to parse contract: %w", err)
	}

	if err := c.Validate(); err != nil {
		return contract.ContractInfo{}, err
	}
	return c.Normalized(), nil
}
