package pipeline

import (
	"context"
	"time"

	"mintrader/internal/domain/history"
	"mintrader/internal/domain/iteration"
	"mintrader/internal/domain/portfolio"
)

// OrderResult is the broker's answer to a submitted order. Status is
// submitted or rejected only; fills show up as fresh position snapshots on
// the next iteration.
type OrderResult struct {
	OrderID string
	Status  string
	Detail  string
}

// Clock is the broker's market clock
type Clock struct {
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// TradingGateway is the brokerage contract the pipeline consumes. Wire
// formats are the adapter's business.
type TradingGateway interface {
	GetAccount(ctx context.Context) (*portfolio.Account, error)
	GetPositions(ctx context.Context) ([]portfolio.Position, error)
	GetOpenOrders(ctx context.Context) ([]portfolio.OpenOrder, error)
	SubmitOrder(ctx context.Context, intent iteration.TradeIntent) (*OrderResult, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetClock(ctx context.Context) (*Clock, error)
}

// AnalysisGateway produces one deep analysis per ticker per iteration.
// Failures are recorded as degraded hold results by the caller, never
// propagated up through the sequencer.
type AnalysisGateway interface {
	Analyze(ctx context.Context, ticker string, asOf time.Time) (*iteration.AnalysisResult, error)
}

// SelectionInput is everything the selector may consider
type SelectionInput struct {
	Positions     []portfolio.Position
	LastSummary   string
	RecentHistory []history.TickerHistory
	HardExcluded  map[string]bool
	MaxCandidates int
}

// StockSelector proposes candidate tickers for analysis
type StockSelector interface {
	SelectStocks(ctx context.Context, in SelectionInput) ([]string, error)
}

// DecisionInput is everything the decider may consider
type DecisionInput struct {
	Account     *portfolio.Account
	Positions   []portfolio.Position
	Analyses    []iteration.AnalysisResult
	LastSummary string
	TradesToday int
}

// TradeDecider turns analyses into concrete trade intents
type TradeDecider interface {
	DecideTrades(ctx context.Context, in DecisionInput) ([]iteration.TradeIntent, error)
}

// Summarizer writes the iteration wrap-up that seeds the next run's context
type Summarizer interface {
	Summarize(ctx context.Context, state *iteration.WorkflowState) (string, error)
}
