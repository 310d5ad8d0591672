package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"mintrader/internal/domain/iteration"
	"mintrader/internal/domain/portfolio"
)

func TestFallbackSummary_DistinguishesOutcomes(t *testing.T) {
	state := iteration.NewState("it-1", time.Now())
	state.Account = &portfolio.Account{
		Cash:           decimal.NewFromInt(25000),
		PortfolioValue: decimal.NewFromInt(100000),
	}
	state.Positions = []portfolio.Position{{Ticker: "AAPL"}}
	state.Analyses = []iteration.AnalysisResult{
		{Ticker: "AAPL", Recommendation: "buy", Conviction: 8},
		{Ticker: "MSFT", Recommendation: "hold", Degraded: true},
	}
	state.Executed = []iteration.ExecutedTrade{
		{Ticker: "AAPL", Action: "buy", Quantity: 10, Status: "submitted"},
		{Ticker: "NVDA", Action: "buy", Quantity: 5, Status: "rejected"},
	}
	state.ConstraintRejections = []iteration.ConstraintRejection{
		{Ticker: "GOOG", Action: "buy", Rule: "position_size_cap", Reason: "too large"},
	}

	got := FallbackSummary(state)

	assert.Contains(t, got, "Analyzed AAPL: buy, conviction 8")
	assert.Contains(t, got, "Analysis failed for MSFT")
	assert.Contains(t, got, "Submitted buy AAPL")
	assert.Contains(t, got, "Broker rejected buy NVDA")
	assert.Contains(t, got, "Skipped buy GOOG by risk limit position_size_cap")
	assert.Contains(t, got, "1 position")
}

func TestFallbackSummary_QuietIteration(t *testing.T) {
	state := iteration.NewState("it-2", time.Now())
	state.Account = &portfolio.Account{
		Cash:           decimal.NewFromInt(100000),
		PortfolioValue: decimal.NewFromInt(100000),
	}

	got := FallbackSummary(state)
	assert.Contains(t, got, "No trades were proposed")
	assert.Contains(t, got, "0 positions")
}
