package agents

import (
	"context"
	"fmt"
	"strings"

	"mintrader/internal/adapters/ai"
	"mintrader/internal/domain/iteration"
	"mintrader/internal/pipeline"
)

// Summarizer writes the iteration journal entry the next run reads back
type Summarizer struct {
	provider ai.ChatProvider
	model    string
}

var _ pipeline.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates the summarizer agent
func NewSummarizer(provider ai.ChatProvider, model string) *Summarizer {
	return &Summarizer{provider: provider, model: model}
}

// Summarize produces the wrap-up for a finished iteration
func (s *Summarizer) Summarize(ctx context.Context, state *iteration.WorkflowState) (string, error) {
	var b strings.Builder

	if state.Account != nil {
		fmt.Fprintf(&b, "Portfolio value %s, cash %s, %d positions.\n",
			state.Account.PortfolioValue.StringFixed(2),
			state.Account.Cash.StringFixed(2),
			len(state.Positions))
	}

	if len(state.Analyses) > 0 {
		b.WriteString("\nAnalyzed:\n")
		for _, a := range state.Analyses {
			if a.Degraded {
				fmt.Fprintf(&b, "- %s: analysis failed, defaulted to hold\n", a.Ticker)
				continue
			}
			fmt.Fprintf(&b, "- %s: %s, conviction %d. %s\n",
				a.Ticker, a.Recommendation, a.Conviction, a.Thesis)
		}
	}

	if len(state.Executed) > 0 {
		b.WriteString("\nOrders:\n")
		for _, e := range state.Executed {
			fmt.Fprintf(&b, "- %s %s %.0f shares: %s\n", e.Action, e.Ticker, e.Quantity, e.Status)
		}
	}

	if len(state.ConstraintRejections) > 0 {
		b.WriteString("\nSkipped by risk limits:\n")
		for _, r := range state.ConstraintRejections {
			fmt.Fprintf(&b, "- %s %s: %s\n", r.Action, r.Ticker, r.Reason)
		}
	}

	if len(state.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWarnings: %s\n", strings.Join(state.Warnings, "; "))
	}

	return s.provider.Complete(ctx, ai.ChatRequest{
		Model:       s.model,
		System:      summarizerSystemPrompt,
		User:        b.String(),
		Temperature: 0.3,
	})
}
