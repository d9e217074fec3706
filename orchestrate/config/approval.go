package config

import "time"

// Approval transport names understood by the kernel.
const (
	TransportConsole     = "console"
	TransportAutoApprove = "auto-approve"
	TransportAutoReject  = "auto-reject"
	TransportConnect     = "connect"
)

// ApprovalConfig controls human-in-the-loop approval requests.
//
// Example YAML:
//
//	approval:
//	  timeout: 2m
//	  transport: connect
//	  listen: ":8088"
type ApprovalConfig struct {
	// Timeout is the hard limit on a single approval request. An unanswered
	// request resolves to "not approved".
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Transport names the approval channel ("console", "auto-approve",
	// "auto-reject", "connect")
	Transport string `json:"transport" yaml:"transport" mapstructure:"transport"`

	// Listen is the address served by the "connect" transport
	Listen string `json:"listen" yaml:"listen" mapstructure:"listen"`
}

// DefaultApprovalConfig returns approval defaults: five minute timeout over
// the console.
func DefaultApprovalConfig() ApprovalConfig {
	return ApprovalConfig{
		Timeout:   5 * time.Minute,
		Transport: TransportConsole,
		Listen:    ":8088",
	}
}

func (c *ApprovalConfig) Merge(source *ApprovalConfig) {
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}

	if source.Transport != "" {
		c.Transport = source.Transport
	}

	if source.Listen != "" {
		c.Listen = source.Listen
	}
}
