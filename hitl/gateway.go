package hitl

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
)

// Gateway enforces the approval policy around a Transport.
type Gateway struct {
	transport Transport
	timeout   time.Duration
	observer  observability.Observer
	busy      atomic.Bool
}

// NewGateway creates a gateway. cfg is merged onto DefaultApprovalConfig; a
// nil observer discards events.
func NewGateway(transport Transport, cfg config.ApprovalConfig, observer observability.Observer) *Gateway {
	merged := config.DefaultApprovalConfig()
	merged.Merge(&cfg)

	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Gateway{
		transport: transport,
		timeout:   merged.Timeout,
		observer:  observer,
	}
}

// Timeout returns the per-request answer deadline.
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

type answer struct {
	approved bool
	err      error
}

// Request asks the approver and blocks for the answer. It returns (false,
// nil) when the timeout expires or the transport fails, and (false,
// ctx.Err()) when ctx is cancelled first.
func (g *Gateway) Request(ctx context.Context, kind Kind, c contract.ContractInfo, risk contract.RiskAssessment, prompt string) (bool, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return false, ErrRequestInFlight
	}
	defer g.busy.Store(false)

	now := time.Now().UTC()
	req := Request{
		ID:       ulid.Make().String(),
		Kind:     kind,
		Contract: c,
		Risk:     risk,
		Prompt:   prompt,
		AskedAt:  now,
		Deadline: now.Add(g.timeout),
	}

	g.emit(ctx, EventRequest, observability.LevelInfo, req, map[string]any{
		"prompt":  prompt,
		"timeout": g.timeout.String(),
	})

	askCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan answer, 1)
	go func() {
		approved, err := g.transport.Ask(askCtx, req)
		done <- answer{approved: approved, err: err}
	}()

	select {
	case a := <-done:
		if a.err == nil {
			g.emit(ctx, EventAnswer, observability.LevelInfo, req, map[string]any{"approved": a.approved})
			return a.approved, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if errors.Is(a.err, context.DeadlineExceeded) && askCtx.Err() != nil {
			g.timedOut(ctx, req)
			return false, nil
		}
		g.emit(ctx, EventError, observability.LevelWarning, req, map[string]any{"error": a.err.Error()})
		return false, nil
	case <-askCtx.Done():
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		g.timedOut(ctx, req)
		return false, nil
	}
}

func (g *Gateway) timedOut(ctx context.Context, req Request) {
	g.emit(ctx, EventTimeout, observability.LevelWarning, req, map[string]any{
		"timeout": g.timeout.String(),
		"result":  false,
	})
}

func (g *Gateway) emit(ctx context.Context, typ observability.EventType, level observability.Level, req Request, data map[string]any) {
	data["request_id"] = req.ID
	data["kind"] = string(req.Kind)
	g.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "hitl",
		Data:      data,
	})
}
