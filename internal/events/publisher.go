package events

import (
	"context"
	"time"

	"mintrader/internal/adapters/kafka"
	"mintrader/internal/domain/iteration"
	"mintrader/pkg/logger"
)

// Topics
const (
	TopicIterations = "mintrader.iterations"
	TopicTrades     = "mintrader.trades"
	TopicAnalyses   = "mintrader.analyses"
)

// IterationEvent announces an iteration lifecycle transition
type IterationEvent struct {
	IterationID string    `json:"iteration_id"`
	Phase       string    `json:"phase"`
	Event       string    `json:"event"` // started, completed, failed
	Detail      string    `json:"detail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// TradeEvent announces one order submission outcome
type TradeEvent struct {
	IterationID string    `json:"iteration_id"`
	OrderID     string    `json:"order_id,omitempty"`
	Ticker      string    `json:"ticker"`
	Action      string    `json:"action"`
	Quantity    float64   `json:"quantity"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// AnalysisEvent announces one completed analysis
type AnalysisEvent struct {
	IterationID    string    `json:"iteration_id"`
	Ticker         string    `json:"ticker"`
	Recommendation string    `json:"recommendation"`
	Conviction     int       `json:"conviction"`
	Degraded       bool      `json:"degraded"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher emits workflow events to Kafka. A nil producer disables
// publishing; every method is then a no-op. Publish failures are logged and
// swallowed: eventing must never fail an iteration.
type Publisher struct {
	producer *kafka.Producer
}

// NewPublisher creates the event publisher. producer may be nil.
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{producer: producer}
}

// IterationStarted emits a started event
func (p *Publisher) IterationStarted(ctx context.Context, iterationID string) {
	p.emit(ctx, TopicIterations, iterationID, IterationEvent{
		IterationID: iterationID,
		Event:       "started",
		Timestamp:   time.Now().UTC(),
	})
}

// IterationCompleted emits a completed event
func (p *Publisher) IterationCompleted(ctx context.Context, state *iteration.WorkflowState) {
	p.emit(ctx, TopicIterations, state.IterationID, IterationEvent{
		IterationID: state.IterationID,
		Phase:       string(state.Phase),
		Event:       "completed",
		Timestamp:   time.Now().UTC(),
	})
}

// IterationFailed emits a failed event with the halting phase and error
func (p *Publisher) IterationFailed(ctx context.Context, iterationID string, phase iteration.Phase, detail string) {
	p.emit(ctx, TopicIterations, iterationID, IterationEvent{
		IterationID: iterationID,
		Phase:       string(phase),
		Event:       "failed",
		Detail:      detail,
		Timestamp:   time.Now().UTC(),
	})
}

// TradeSubmitted emits the outcome of one order submission
func (p *Publisher) TradeSubmitted(ctx context.Context, iterationID string, trade iteration.ExecutedTrade) {
	p.emit(ctx, TopicTrades, trade.Ticker, TradeEvent{
		IterationID: iterationID,
		OrderID:     trade.OrderID,
		Ticker:      trade.Ticker,
		Action:      trade.Action,
		Quantity:    trade.Quantity,
		Status:      trade.Status,
		Timestamp:   time.Now().UTC(),
	})
}

// AnalysisCompleted emits one finished analysis
func (p *Publisher) AnalysisCompleted(ctx context.Context, iterationID string, result iteration.AnalysisResult) {
	p.emit(ctx, TopicAnalyses, result.Ticker, AnalysisEvent{
		IterationID:    iterationID,
		Ticker:         result.Ticker,
		Recommendation: result.Recommendation,
		Conviction:     result.Conviction,
		Degraded:       result.Degraded,
		Timestamp:      time.Now().UTC(),
	})
}

func (p *Publisher) emit(ctx context.Context, topic, key string, payload interface{}) {
	if p == nil || p.producer == nil {
		return
	}
	if err := p.producer.Publish(ctx, topic, key, payload); err != nil {
		logger.Get().Warnw("event publish failed",
			"topic", topic,
			"key", key,
			"error", err)
	}
}
