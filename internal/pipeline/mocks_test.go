package pipeline

import (
	"context"
	"time"

	"mintrader/internal/domain/history"
	"mintrader/internal/domain/iteration"
	"mintrader/internal/domain/portfolio"
	"mintrader/pkg/errors"
)

type mockTrading struct {
	account    *portfolio.Account
	positions  []portfolio.Position
	openOrders []portfolio.OpenOrder
	clock      *Clock

	accountErr error
	submitErr  error
	results    map[string]*OrderResult // keyed by ticker

	submitted []iteration.TradeIntent
}

func (m *mockTrading) GetAccount(ctx context.Context) (*portfolio.Account, error) {
	if m.accountErr != nil {
		return nil, m.accountErr
	}
	return m.account, nil
}

func (m *mockTrading) GetPositions(ctx context.Context) ([]portfolio.Position, error) {
	return m.positions, nil
}

func (m *mockTrading) GetOpenOrders(ctx context.Context) ([]portfolio.OpenOrder, error) {
	return m.openOrders, nil
}

func (m *mockTrading) SubmitOrder(ctx context.Context, intent iteration.TradeIntent) (*OrderResult, error) {
	m.submitted = append(m.submitted, intent)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if r, ok := m.results[intent.Ticker]; ok {
		return r, nil
	}
	return &OrderResult{OrderID: "ord-" + intent.Ticker, Status: "submitted"}, nil
}

func (m *mockTrading) CancelOrder(ctx context.Context, orderID string) error { return nil }

func (m *mockTrading) GetClock(ctx context.Context) (*Clock, error) {
	if m.clock == nil {
		return &Clock{IsOpen: true}, nil
	}
	return m.clock, nil
}

type mockAnalysis struct {
	results map[string]*iteration.AnalysisResult
	errs    map[string]error
	calls   []string
}

func (m *mockAnalysis) Analyze(ctx context.Context, ticker string, asOf time.Time) (*iteration.AnalysisResult, error) {
	m.calls = append(m.calls, ticker)
	if err, ok := m.errs[ticker]; ok {
		return nil, err
	}
	if r, ok := m.results[ticker]; ok {
		return r, nil
	}
	return &iteration.AnalysisResult{
		Ticker: ticker, Recommendation: "hold", Conviction: 5, AnalyzedAt: asOf,
	}, nil
}

type mockSelector struct {
	candidates []string
	err        error
	gotInput   SelectionInput
}

func (m *mockSelector) SelectStocks(ctx context.Context, in SelectionInput) ([]string, error) {
	m.gotInput = in
	return m.candidates, m.err
}

type mockDecider struct {
	intents  []iteration.TradeIntent
	err      error
	gotInput DecisionInput
}

func (m *mockDecider) DecideTrades(ctx context.Context, in DecisionInput) ([]iteration.TradeIntent, error) {
	m.gotInput = in
	return m.intents, m.err
}

type mockSummarizer struct {
	summary string
	err     error
}

func (m *mockSummarizer) Summarize(ctx context.Context, state *iteration.WorkflowState) (string, error) {
	return m.summary, m.err
}

type mockRecency struct {
	recent   []history.TickerHistory
	excluded map[string]bool
	recorded []history.Entry
}

func (m *mockRecency) RecentlyAnalyzed(ctx context.Context, thresholdDays int) []history.TickerHistory {
	return m.recent
}

func (m *mockRecency) HardExcluded(ctx context.Context, thresholdDays int) map[string]bool {
	if m.excluded == nil {
		return map[string]bool{}
	}
	return m.excluded
}

func (m *mockRecency) Record(ctx context.Context, entry *history.Entry) error {
	m.recorded = append(m.recorded, *entry)
	return nil
}

type mockCounter struct {
	today      int
	increments int
	err        error
}

func (m *mockCounter) Today(ctx context.Context) (int, error) {
	return m.today, m.err
}

func (m *mockCounter) Increment(ctx context.Context) error {
	m.increments++
	return nil
}

type mockTradeLog struct {
	lastBuys map[string]time.Time
	recorded []iteration.ExecutedTrade
}

func (m *mockTradeLog) Record(ctx context.Context, iterationID string, trade iteration.ExecutedTrade) error {
	m.recorded = append(m.recorded, trade)
	return nil
}

func (m *mockTradeLog) LastBuyAt(ctx context.Context, ticker string) (time.Time, error) {
	if t, ok := m.lastBuys[ticker]; ok {
		return t, nil
	}
	return time.Time{}, errors.ErrNotFound
}

type mockCheckpoints struct {
	saved   []*iteration.WorkflowState
	saveErr error
	stored  map[string]*iteration.WorkflowState
}

func (m *mockCheckpoints) Save(ctx context.Context, state *iteration.WorkflowState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, state)
	if m.stored == nil {
		m.stored = make(map[string]*iteration.WorkflowState)
	}
	m.stored[state.IterationID] = state
	return nil
}

func (m *mockCheckpoints) Load(ctx context.Context, iterationID string) (*iteration.WorkflowState, error) {
	if s, ok := m.stored[iterationID]; ok {
		return s, nil
	}
	return nil, errors.ErrNotFound
}

func (m *mockCheckpoints) LatestIncomplete(ctx context.Context) (*iteration.WorkflowState, error) {
	for _, s := range m.stored {
		if !s.Phase.Terminal() {
			return s, nil
		}
	}
	return nil, errors.ErrNotFound
}

type mockSummaries struct {
	last    string
	lastErr error
	put     map[string]string
}

func (m *mockSummaries) GetLastSummary(ctx context.Context) (string, error) {
	return m.last, m.lastErr
}

func (m *mockSummaries) PutSummary(ctx context.Context, iterationID, summary string) error {
	if m.put == nil {
		m.put = make(map[string]string)
	}
	m.put[iterationID] = summary
	return nil
}

type mockReports struct {
	written []iteration.AnalysisResult
}

func (m *mockReports) WriteAnalysis(ctx context.Context, result iteration.AnalysisResult) error {
	m.written = append(m.written, result)
	return nil
}

type mockEvents struct {
	started   []string
	completed []string
	failed    []string
	trades    []iteration.ExecutedTrade
	analyses  []iteration.AnalysisResult
}

func (m *mockEvents) IterationStarted(ctx context.Context, iterationID string) {
	m.started = append(m.started, iterationID)
}

func (m *mockEvents) IterationCompleted(ctx context.Context, state *iteration.WorkflowState) {
	m.completed = append(m.completed, state.IterationID)
}

func (m *mockEvents) IterationFailed(ctx context.Context, iterationID string, phase iteration.Phase, detail string) {
	m.failed = append(m.failed, iterationID)
}

func (m *mockEvents) TradeSubmitted(ctx context.Context, iterationID string, trade iteration.ExecutedTrade) {
	m.trades = append(m.trades, trade)
}

func (m *mockEvents) AnalysisCompleted(ctx context.Context, iterationID string, result iteration.AnalysisResult) {
	m.analyses = append(m.analyses, result)
}
