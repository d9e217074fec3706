package config

import "runtime"

// GraphConfig defines configuration for graph execution.
//
// Example YAML:
//
//	name: contract-review
//	observer: slog
//	max_steps: 200
//	strict_conditions: true
//	parallel:
//	  max_workers: 3
type GraphConfig struct {
	// Name identifies the graph for observability
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Observer specifies which observer implementation to use ("noop", "slog", "trace")
	Observer string `json:"observer" yaml:"observer" mapstructure:"observer"`

	// MaxSteps bounds the number of scheduler steps in a single run
	MaxSteps int `json:"max_steps" yaml:"max_steps" mapstructure:"max_steps"`

	// StrictConditionsNil controls overlapping conditional edges. Use
	// StrictConditions() to access. When nil, defaults to true.
	StrictConditionsNil *bool `json:"strict_conditions,omitempty" yaml:"strict_conditions,omitempty" mapstructure:"strict_conditions"`

	// Parallel configures fan-out group execution
	Parallel ParallelConfig `json:"parallel" yaml:"parallel" mapstructure:"parallel"`
}

// StrictConditions reports whether more than one matching conditional edge
// is a fatal error. When false, the first-declared match wins.
func (c *GraphConfig) StrictConditions() bool {
	if c.StrictConditionsNil == nil {
		return true
	}
	return *c.StrictConditionsNil
}

// DefaultGraphConfig returns a GraphConfig with sensible defaults.
//
// Default values:
//   - Observer: "slog"
//   - MaxSteps: 200
//   - StrictConditions: true
//   - Parallel: DefaultParallelConfig()
func DefaultGraphConfig(name string) GraphConfig {
	strict := true
	return GraphConfig{
		Name:                name,
		Observer:            "slog",
		MaxSteps:            200,
		StrictConditionsNil: &strict,
		Parallel:            DefaultParallelConfig(),
	}
}

func (c *GraphConfig) Merge(source *GraphConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.MaxSteps > 0 {
		c.MaxSteps = source.MaxSteps
	}

	if source.StrictConditionsNil != nil {
		c.StrictConditionsNil = source.StrictConditionsNil
	}

	c.Parallel.Merge(&source.Parallel)
}

// ParallelConfig defines configuration for parallel execution of fan-out
// groups.
//
// Worker Pool Sizing:
//   - MaxWorkers = 0: Auto-detect based on runtime.NumCPU() * 2, capped by WorkerCap
//   - MaxWorkers > 0: Use exact worker count, ignoring auto-detection
//
// Error Handling:
//   - FailFast = true: Stop processing on first error, cancel all workers
//   - FailFast = false: Continue processing all items, collect all errors
type ParallelConfig struct {
	// MaxWorkers specifies exact worker pool size (0 = auto-detect)
	MaxWorkers int `json:"max_workers" yaml:"max_workers" mapstructure:"max_workers"`

	// WorkerCap limits auto-detected workers (default: 16)
	WorkerCap int `json:"worker_cap" yaml:"worker_cap" mapstructure:"worker_cap"`

	// FailFastNil controls error handling behavior. Use FailFast() method to access.
	// When nil, defaults to true.
	FailFastNil *bool `json:"fail_fast,omitempty" yaml:"fail_fast,omitempty" mapstructure:"fail_fast"`

	// Observer specifies which observer implementation to use ("noop", "slog", "trace")
	Observer string `json:"observer" yaml:"observer" mapstructure:"observer"`
}

func (c *ParallelConfig) FailFast() bool {
	if c.FailFastNil == nil {
		return true
	}
	return *c.FailFastNil
}

// Workers returns the worker count for n items.
func (c *ParallelConfig) Workers(n int) int {
	if n <= 0 {
		return 0
	}

	if c.MaxWorkers > 0 {
		return min(c.MaxWorkers, n)
	}

	limit := runtime.NumCPU() * 2
	if c.WorkerCap > 0 {
		limit = min(limit, c.WorkerCap)
	}
	return max(1, min(limit, n))
}

// DefaultParallelConfig returns sensible defaults for parallel execution.
//
// Default configuration:
//   - MaxWorkers: 0 (auto-detect: min(NumCPU*2, WorkerCap, len(items)))
//   - WorkerCap: 16
//   - FailFast: true
//   - Observer: "slog"
func DefaultParallelConfig() ParallelConfig {
	failFast := true
	return ParallelConfig{
		MaxWorkers:  0,
		WorkerCap:   16,
		FailFastNil: &failFast,
		Observer:    "slog",
	}
}

func (c *ParallelConfig) Merge(source *ParallelConfig) {
	if source.MaxWorkers > 0 {
		c.MaxWorkers = source.MaxWorkers
	}

	if source.WorkerCap > 0 {
		c.WorkerCap = source.WorkerCap
	}

	if source.FailFastNil != nil {
		c.FailFastNil = source.FailFastNil
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}
