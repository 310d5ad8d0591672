package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mintrader/internal/adapters/ai"
	"mintrader/internal/domain/iteration"
	"mintrader/internal/pipeline"
	"mintrader/pkg/errors"
)

// Analyst produces one deep analysis per ticker
type Analyst struct {
	provider ai.ChatProvider
	model    string
}

var _ pipeline.AnalysisGateway = (*Analyst)(nil)

// NewAnalyst creates the analyst agent
func NewAnalyst(provider ai.ChatProvider, model string) *Analyst {
	return &Analyst{provider: provider, model: model}
}

// Analyze runs a full single-name analysis as of the given date
func (a *Analyst) Analyze(ctx context.Context, ticker string, asOf time.Time) (*iteration.AnalysisResult, error) {
	user := fmt.Sprintf(
		"Analyze %s as of %s. Cover business momentum, valuation, and near-term catalysts, then make your call.",
		ticker, asOf.Format("2006-01-02"))

	raw, err := a.provider.Complete(ctx, ai.ChatRequest{
		Model:        a.model,
		System:       analystSystemPrompt,
		User:         user,
		Temperature:  0.4,
		JSONResponse: true,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrAnalysisFailed, "%s: %v", ticker, err)
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, errors.Wrapf(errors.ErrAnalysisFailed, "%s: parse analysis: %v", ticker, err)
	}

	rec := strings.ToLower(strings.TrimSpace(resp.Recommendation))
	switch rec {
	case "buy", "sell", "hold":
	default:
		return nil, errors.Wrapf(errors.ErrAnalysisFailed, "%s: unknown recommendation %q", ticker, resp.Recommendation)
	}

	conviction := resp.Conviction
	if conviction < 1 {
		conviction = 1
	} else if conviction > 10 {
		conviction = 10
	}

	return &iteration.AnalysisResult{
		Ticker:         ticker,
		Recommendation: rec,
		Conviction:     conviction,
		Thesis:         resp.Thesis,
		Risks:          resp.Risks,
		TargetPrice:    resp.TargetPrice,
		AnalyzedAt:     asOf,
	}, nil
}
