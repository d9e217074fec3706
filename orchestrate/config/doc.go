// Package config provides configuration structures for the contract-review
// runtime.
//
// Configuration only exists during initialization. Each structure is loaded
// from a file, merged over its defaults, and then transformed into runtime
// objects (an engine, a gateway, a pipeline). Observers and transports are
// named by string and resolved through registries at construction time.
//
// # Graph Configuration
//
//	cfg := config.DefaultGraphConfig("contract-review")
//	// Observer: "slog"
//	// MaxSteps: 200
//	// StrictConditions: true
//
// # Approval Configuration
//
//	cfg := config.DefaultApprovalConfig()
//	// Timeout: 5m
//	// Transport: "console"
//
// # Configuration Merging
//
// All configuration types support a Merge pattern. Loaded configs merge over
// defaults:
//
//	cfg := config.DefaultGraphConfig("workflow")
//	var loaded config.GraphConfig
//	yaml.Unmarshal(data, &loaded)
//	cfg.Merge(&loaded)
//
// Merge semantics by field type:
//
//   - Strings: Merge if source is non-empty
//   - Integers: Merge if source is greater than zero
//   - Durations: Merge if source is greater than zero
//   - Pointers: Merge if source is non-nil
//   - Nested configs: Recursive merge
//
// # Boolean Fields with Non-False Defaults
//
// For boolean fields where the default is true (ParallelConfig.FailFast,
// GraphConfig.StrictConditions), a pointer type is used with an accessor
// method to distinguish between:
//
//   - nil: Field not specified, accessor returns default value
//   - &false: Explicitly set to false, accessor returns false
//   - &true: Explicitly set to true, accessor returns true
//
// The field carries a "Nil" suffix and the accessor uses the original name:
//
//	type GraphConfig struct {
//	    StrictConditionsNil *bool `json:"strict_conditions"`
//	}
//
//	func (c *GraphConfig) StrictConditions() bool
//
// Without the pointer a partial config file that omits the field would
// unmarshal to false and override the true default.
package config
