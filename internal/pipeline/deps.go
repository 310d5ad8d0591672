package pipeline

import (
	"context"
	"time"

	"mintrader/internal/domain/history"
	"mintrader/internal/domain/iteration"
	"mintrader/internal/services/risk"
)

// RecencyTracker is the slice of the history service the pipeline needs
type RecencyTracker interface {
	RecentlyAnalyzed(ctx context.Context, thresholdDays int) []history.TickerHistory
	HardExcluded(ctx context.Context, thresholdDays int) map[string]bool
	Record(ctx context.Context, entry *history.Entry) error
}

// TradeCounter tracks submitted trades per trading day across iterations
type TradeCounter interface {
	Today(ctx context.Context) (int, error)
	Increment(ctx context.Context) error
}

// TradeLog is the durable order log used to derive holding age
type TradeLog interface {
	Record(ctx context.Context, iterationID string, trade iteration.ExecutedTrade) error
	LastBuyAt(ctx context.Context, ticker string) (time.Time, error)
}

// SummaryStore persists iteration summaries between runs
type SummaryStore interface {
	GetLastSummary(ctx context.Context) (string, error)
	PutSummary(ctx context.Context, iterationID, summary string) error
}

// ReportWriter stores per-ticker analysis reports
type ReportWriter interface {
	WriteAnalysis(ctx context.Context, result iteration.AnalysisResult) error
}

// EventPublisher announces workflow milestones. Implementations must be
// non-blocking on failure.
type EventPublisher interface {
	IterationStarted(ctx context.Context, iterationID string)
	IterationCompleted(ctx context.Context, state *iteration.WorkflowState)
	IterationFailed(ctx context.Context, iterationID string, phase iteration.Phase, detail string)
	TradeSubmitted(ctx context.Context, iterationID string, trade iteration.ExecutedTrade)
	AnalysisCompleted(ctx context.Context, iterationID string, result iteration.AnalysisResult)
}

// Deps are the collaborators the sequencer drives
type Deps struct {
	Trading     TradingGateway
	Analysis    AnalysisGateway
	Selector    StockSelector
	Decider     TradeDecider
	Summarizer  Summarizer
	Recency     RecencyTracker
	Trades      TradeCounter
	TradeLog    TradeLog
	Checkpoints iteration.CheckpointRepository
	Summaries   SummaryStore
	Reports     ReportWriter
	Events      EventPublisher
}

// Config are the per-iteration immutable knobs
type Config struct {
	Constraints       risk.Constraints
	HardExclusionDays int
	SoftExclusionDays int
	MaxAnalyses       int
	Now               func() time.Time
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
