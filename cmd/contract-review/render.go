package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/contract-review/core/contract"
	"github.com/tailored-agentic-units/contract-review/orchestrate/hub"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	decisionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
)

func levelStyle(level contract.RiskLevel) lipgloss.Style {
	switch level {
	case contract.RiskLow:
		return lowStyle
	case contract.RiskHigh:
		return highStyle
	default:
		return mediumStyle
	}
}

// render prints every hub message until the subscription closes.
func render(ctx context.Context, w io.Writer, sub *hub.Subscription) error {
	for {
		msg, err := sub.Receive(ctx)
		if err != nil {
			if errors.Is(err, hub.ErrClosed) {
				return nil
			}
			return err
		}
		fmt.Fprintln(w, renderMessage(msg))
	}
}

func renderMessage(msg *hub.Message) string {
	switch v := msg.Data.(type) {
	case contract.RiskAssessment:
		return renderRisk(v)
	case contract.EvaluationResult:
		return renderEvaluation(v)
	case contract.FinalDecision:
		return renderDecision(v)
	default:
		return detailStyle.Render(msg.String())
	}
}

func renderRisk(r contract.RiskAssessment) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Risk assessment"))
	b.WriteString(" ")
	b.WriteString(levelStyle(r.Level).Render(fmt.Sprintf("%d %s", r.Score, r.Level)))
	for _, review := range r.Reviews {
		fmt.Fprintf(&b, "\n  %-12s %3d  %s", review.Reviewer, review.RiskScore, detailStyle.Render(review.Opinion))
	}
	for _, c := range r.Concerns {
		fmt.Fprintf(&b, "\n  - %s", c)
	}
	return b.String()
}

func renderEvaluation(e contract.EvaluationResult) string {
	next := "stop"
	if e.Continue {
		next = "continue"
	}
	return fmt.Sprintf("%s %s %s",
		headerStyle.Render(fmt.Sprintf("Round %d", e.Iteration)),
		levelStyle(contract.Classify(e.NewScore)).Render(fmt.Sprintf("%d", e.NewScore)),
		detailStyle.Render(e.Comment+" ("+next+")"))
}

func renderDecision(d contract.FinalDecision) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(string(d.Decision)))
	b.WriteString("\n")
	b.WriteString(d.Summary)

	if changes := d.Changes(); len(changes) > 0 {
		keys := make([]string, 0, len(changes))
		for k := range changes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %s -> %s", k, changes[k].Before, changes[k].After)
		}
	}

	if len(d.NextActions) > 0 {
		b.WriteString("\n")
		for _, a := range d.NextActions {
			fmt.Fprintf(&b, "\n  * %s", a)
		}
	}
	return decisionStyle.Render(b.String())
}
