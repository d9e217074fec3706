package kernel_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/kernel"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
	"github.com/tailored-agentic-units/contract-review/pipeline"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := kernel.DefaultConfig()

	if cfg.Graph.Name != pipeline.GraphName {
		t.Errorf("got graph name %q, want %q", cfg.Graph.Name, pipeline.GraphName)
	}
	if cfg.Approval.Timeout != 5*time.Minute {
		t.Errorf("got approval timeout %v, want 5m", cfg.Approval.Timeout)
	}
	if cfg.Approval.Transport != config.TransportConsole {
		t.Errorf("got transport %q, want %q", cfg.Approval.Transport, config.TransportConsole)
	}
	if got := cfg.Negotiation.Perturbation(); got != 5 {
		t.Errorf("got perturbation %d, want 5", got)
	}
	if cfg.Hub.ChannelBufferSize != 64 {
		t.Errorf("got hub buffer %d, want 64", cfg.Hub.ChannelBufferSize)
	}
	if len(cfg.Reviewers) != 0 {
		t.Errorf("got reviewers %v, want none", cfg.Reviewers)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := kernel.DefaultConfig()
	zero := 0
	cfg.Merge(&kernel.Config{
		Approval:    config.ApprovalConfig{Transport: config.TransportAutoReject},
		Negotiation: config.NegotiationConfig{PerturbationNil: &zero},
		Reviewers:   []string{"legal"},
	})

	if cfg.Approval.Transport != config.TransportAutoReject {
		t.Errorf("got transport %q, want %q", cfg.Approval.Transport, config.TransportAutoReject)
	}
	if cfg.Approval.Timeout != 5*time.Minute {
		t.Errorf("zero timeout should not override default, got %v", cfg.Approval.Timeout)
	}
	if got := cfg.Negotiation.Perturbation(); got != 0 {
		t.Errorf("got perturbation %d, want 0", got)
	}
	if len(cfg.Reviewers) != 1 || cfg.Reviewers[0] != "legal" {
		t.Errorf("got reviewers %v, want [legal]", cfg.Reviewers)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeFile(t, "review.yaml", `
graph:
  observer: noop
  max_steps: 50
approval:
  timeout: 30s
  transport: auto-approve
negotiation:
  perturbation: 0
reviewers: [Finance, Legal]
`)

	cfg, err := kernel.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Graph.Observer != "noop" {
		t.Errorf("got observer %q, want noop", cfg.Graph.Observer)
	}
	if cfg.Graph.MaxSteps != 50 {
		t.Errorf("got max steps %d, want 50", cfg.Graph.MaxSteps)
	}
	if cfg.Graph.Name != pipeline.GraphName {
		t.Errorf("got graph name %q, want default %q", cfg.Graph.Name, pipeline.GraphName)
	}
	if cfg.Approval.Timeout != 30*time.Second {
		t.Errorf("got timeout %v, want 30s", cfg.Approval.Timeout)
	}
	if cfg.Approval.Transport != config.TransportAutoApprove {
		t.Errorf("got transport %q, want auto-approve", cfg.Approval.Transport)
	}
	if got := cfg.Negotiation.Perturbation(); got != 0 {
		t.Errorf("got perturbation %d, want 0", got)
	}
	if len(cfg.Reviewers) != 2 || cfg.Reviewers[0] != "Finance" {
		t.Errorf("got reviewers %v, want [Finance Legal]", cfg.Reviewers)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeFile(t, "review.yaml", `
approval:
  transport: console
`)
	t.Setenv("CONTRACT_REVIEW_APPROVAL_TRANSPORT", "auto-reject")
	t.Setenv("CONTRACT_REVIEW_APPROVAL_TIMEOUT", "45s")

	cfg, err := kernel.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Approval.Transport != config.TransportAutoReject {
		t.Errorf("got transport %q, want auto-reject", cfg.Approval.Transport)
	}
	if cfg.Approval.Timeout != 45*time.Second {
		t.Errorf("got timeout %v, want 45s", cfg.Approval.Timeout)
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := kernel.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Approval.Transport != config.TransportConsole {
		t.Errorf("got transport %q, want console", cfg.Approval.Transport)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := kernel.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadContract(t *testing.T) {
	path := writeFile(t, "contract.yaml", `
supplier: Acme Industrial
value: 420000
term_months: 24
payment_terms: Net 30
delivery_terms: FOB
warranty_months: 6
penalty_clause: false
auto_renewal: true
`)

	c, err := kernel.LoadContract(path)
	if err != nil {
		t.Fatalf("LoadContract failed: %v", err)
	}

	if c.Supplier != "Acme Industrial" {
		t.Errorf("got supplier %q", c.Supplier)
	}
	if c.Value != 420_000 {
		t.Errorf("got value %v, want 420000", c.Value)
	}
	if c.Currency != "USD" {
		t.Errorf("got currency %q, want normalized USD", c.Currency)
	}
	if !c.AutoRenewal {
		t.Error("expected auto_renewal true")
	}
}

func TestParseContract_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "supplier: Acme\nvalue: 10\nterm_months: 1\nbonus: yes\n"},
		{"missing supplier", "value: 10\nterm_months: 12\n"},
		{"negative value", "supplier: Acme\nvalue: -1\nterm_months: 12\n"},
		{"malformed", "supplier: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := kernel.ParseContract([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseContract_ValidationError(t *testing.T) {
	_, err := kernel.ParseContract([]byte("value: 10\nterm_months: 12\n"))
	if !errors.Is(err, contract.ErrInvalidContract) {
		t.Errorf("got %v, want ErrInvalidContract", err)
	}
}
