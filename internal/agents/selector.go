package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mintrader/internal/adapters/ai"
	"mintrader/internal/pipeline"
	"mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

// Selector proposes candidate tickers via the LLM. Tickers inside the hard
// exclusion window are filtered from the model's answer; if the filter
// empties the list the model gets exactly one retry with the exclusions
// spelled out.
type Selector struct {
	provider ai.ChatProvider
	model    string
}

var _ pipeline.StockSelector = (*Selector)(nil)

// NewSelector creates the stock selector agent
func NewSelector(provider ai.ChatProvider, model string) *Selector {
	return &Selector{provider: provider, model: model}
}

// SelectStocks returns up to in.MaxCandidates tickers not hard-excluded
func (s *Selector) SelectStocks(ctx context.Context, in pipeline.SelectionInput) ([]string, error) {
	log := logger.Get()

	candidates, err := s.ask(ctx, in, nil)
	if err != nil {
		return nil, err
	}

	kept, dropped := partitionExcluded(candidates, in.HardExcluded)
	if len(kept) == 0 && len(dropped) > 0 {
		log.Infow("all candidates recently analyzed, retrying selection",
			"dropped", dropped)
		candidates, err = s.ask(ctx, in, dropped)
		if err != nil {
			return nil, err
		}
		kept, _ = partitionExcluded(candidates, in.HardExcluded)
	}

	if in.MaxCandidates > 0 && len(kept) > in.MaxCandidates {
		kept = kept[:in.MaxCandidates]
	}
	return kept, nil
}

func (s *Selector) ask(ctx context.Context, in pipeline.SelectionInput, mustAvoid []string) ([]string, error) {
	var b strings.Builder

	if len(in.Positions) > 0 {
		b.WriteString("Current positions:\n")
		for _, p := range in.Positions {
			fmt.Fprintf(&b, "- %s: %s shares, pnl %.2f%%\n", p.Ticker, p.Quantity.String(), p.UnrealizedPnLPct)
		}
	} else {
		b.WriteString("The portfolio currently holds no positions.\n")
	}

	if in.LastSummary != "" {
		fmt.Fprintf(&b, "\nNotes from the previous session:\n%s\n", in.LastSummary)
	}

	if len(in.RecentHistory) > 0 {
		b.WriteString("\nRecently analyzed (prefer fresh names over these):\n")
		for _, h := range in.RecentHistory {
			fmt.Fprintf(&b, "- %s: %s (conviction %d), %d days ago\n",
				h.Ticker, h.Recommendation, h.Conviction, h.DaysAgo)
		}
	}

	if len(mustAvoid) > 0 {
		fmt.Fprintf(&b, "\nDo NOT propose any of these tickers: %s\n", strings.Join(mustAvoid, ", "))
	}

	max := in.MaxCandidates
	if max <= 0 {
		max = 3
	}
	fmt.Fprintf(&b, "\nPropose up to %d tickers for deep analysis today.", max)

	raw, err := s.provider.Complete(ctx, ai.ChatRequest{
		Model:        s.model,
		System:       selectorSystemPrompt,
		User:         b.String(),
		Temperature:  0.7,
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var resp selectionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse selection response: %v", err)
	}

	out := make([]string, 0, len(resp.Tickers))
	seen := make(map[string]bool, len(resp.Tickers))
	for _, t := range resp.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

func partitionExcluded(tickers []string, excluded map[string]bool) (kept, dropped []string) {
	for _, t := range tickers {
		if excluded[t] {
			dropped = append(dropped, t)
		} else {
			kept = append(kept, t)
		}
	}
	return kept, dropped
}
