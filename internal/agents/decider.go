package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mintrader/internal/adapters/ai"
	"mintrader/internal/domain/iteration"
	"mintrader/internal/pipeline"
	"mintrader/pkg/errors"
)

// Decider turns completed analyses into concrete trade intents. Intents for
// tickers without an analysis this iteration are dropped: the model may only
// act on research it was shown.
type Decider struct {
	provider ai.ChatProvider
	model    string
}

var _ pipeline.TradeDecider = (*Decider)(nil)

// NewDecider creates the trade decider agent
func NewDecider(provider ai.ChatProvider, model string) *Decider {
	return &Decider{provider: provider, model: model}
}

// DecideTrades proposes trades from this iteration's analyses
func (d *Decider) DecideTrades(ctx context.Context, in pipeline.DecisionInput) ([]iteration.TradeIntent, error) {
	if len(in.Analyses) == 0 {
		return nil, nil
	}

	raw, err := d.provider.Complete(ctx, ai.ChatRequest{
		Model:        d.model,
		System:       deciderSystemPrompt,
		User:         d.buildPrompt(in),
		Temperature:  0.2,
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var resp decisionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse decision response: %v", err)
	}

	analyzed := make(map[string]bool, len(in.Analyses))
	for _, a := range in.Analyses {
		analyzed[a.Ticker] = true
	}

	intents := make([]iteration.TradeIntent, 0, len(resp.Trades))
	for _, t := range resp.Trades {
		ticker := strings.ToUpper(strings.TrimSpace(t.Ticker))
		action := strings.ToLower(strings.TrimSpace(t.Action))
		if !analyzed[ticker] {
			continue
		}
		if action != "buy" && action != "sell" {
			continue
		}
		if t.Quantity <= 0 || t.EstimatedPrice <= 0 {
			continue
		}
		intents = append(intents, iteration.TradeIntent{
			Ticker:         ticker,
			Action:         action,
			Quantity:       t.Quantity,
			EstimatedPrice: t.EstimatedPrice,
			Rationale:      t.Rationale,
			Conviction:     t.Conviction,
		})
	}
	return intents, nil
}

func (d *Decider) buildPrompt(in pipeline.DecisionInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Account: cash %s, portfolio value %s. Trades already made today: %d.\n",
		in.Account.Cash.StringFixed(2), in.Account.PortfolioValue.StringFixed(2), in.TradesToday)

	if len(in.Positions) > 0 {
		b.WriteString("\nPositions:\n")
		for _, p := range in.Positions {
			fmt.Fprintf(&b, "- %s: %s shares @ %s entry, now %s, pnl %.2f%%\n",
				p.Ticker, p.Quantity.String(), p.EntryPrice.StringFixed(2),
				p.CurrentPrice.StringFixed(2), p.UnrealizedPnLPct)
		}
	}

	b.WriteString("\nToday's analyses:\n")
	for _, a := range in.Analyses {
		if a.Degraded {
			fmt.Fprintf(&b, "- %s: analysis unavailable, treat as hold\n", a.Ticker)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s (conviction %d). Thesis: %s Risks: %s\n",
			a.Ticker, strings.ToUpper(a.Recommendation), a.Conviction, a.Thesis, a.Risks)
	}

	if in.LastSummary != "" {
		fmt.Fprintf(&b, "\nNotes from the previous session:\n%s\n", in.LastSummary)
	}

	b.WriteString("\nDecide which trades, if any, to place now.")
	return b.String()
}
