package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"mintrader/internal/domain/history"
	"mintrader/internal/domain/iteration"
	"mintrader/internal/domain/portfolio"
	"mintrader/internal/metrics"
	"mintrader/internal/reports"
	"mintrader/internal/services/risk"
	"mintrader/pkg/logger"
)

// assess takes the portfolio snapshot the whole iteration will reason about.
// Broker failures here are fatal: nothing downstream makes sense without the
// snapshot. Summary and trade-counter lookups degrade to warnings.
func (s *Sequencer) assess(ctx context.Context, state *iteration.WorkflowState) (*iteration.Update, error) {
	log := logger.Get()

	account, err := s.deps.Trading.GetAccount(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := s.deps.Trading.GetPositions(ctx)
	if err != nil {
		return nil, err
	}
	openOrders, err := s.deps.Trading.GetOpenOrders(ctx)
	if err != nil {
		return nil, err
	}

	s.enrichHoldingDays(ctx, positions)

	var warnings []string

	lastSummary, err := s.deps.Summaries.GetLastSummary(ctx)
	if err != nil {
		log.Warnw("previous summary unavailable", "error", err)
		warnings = append(warnings, fmt.Sprintf("previous summary unavailable: %v", err))
		lastSummary = ""
	}

	tradesToday, err := s.deps.Trades.Today(ctx)
	if err != nil {
		log.Warnw("trade counter unavailable, assuming zero", "error", err)
		warnings = append(warnings, fmt.Sprintf("trade counter unavailable: %v", err))
		tradesToday = 0
	}

	return &iteration.Update{
		Phase:       iteration.PhaseSelect,
		Account:     account,
		Positions:   positions,
		OpenOrders:  openOrders,
		LastSummary: &lastSummary,
		TradesToday: &tradesToday,
		Warnings:    warnings,
	}, nil
}

// enrichHoldingDays derives each position's age from the trade log. No buy
// on record leaves the age unknown (-1), which skips the holding-period
// rule.
func (s *Sequencer) enrichHoldingDays(ctx context.Context, positions []portfolio.Position) {
	now := s.cfg.now()
	for i := range positions {
		lastBuy, err := s.deps.TradeLog.LastBuyAt(ctx, positions[i].Ticker)
		if err != nil {
			positions[i].HoldingDays = -1
			continue
		}
		days := int(now.Sub(lastBuy).Hours() / 24)
		if days < 0 {
			days = 0
		}
		positions[i].HoldingDays = days
	}
}

// selectStocks asks the selector for candidates, with the recency view as
// context and the hard-exclusion set enforced. No candidates branches
// straight to finalize.
func (s *Sequencer) selectStocks(ctx context.Context, state *iteration.WorkflowState) (*iteration.Update, error) {
	recent := s.deps.Recency.RecentlyAnalyzed(ctx, s.cfg.SoftExclusionDays)
	excluded := s.deps.Recency.HardExcluded(ctx, s.cfg.HardExclusionDays)

	candidates, err := s.deps.Selector.SelectStocks(ctx, SelectionInput{
		Positions:     state.Positions,
		LastSummary:   state.LastSummary,
		RecentHistory: recent,
		HardExcluded:  excluded,
		MaxCandidates: s.cfg.MaxAnalyses,
	})
	if err != nil {
		return nil, err
	}

	// no candidates skips the analyze step but still lets the decider look
	// at existing positions
	if len(candidates) == 0 {
		return &iteration.Update{
			Phase:      iteration.PhaseDecide,
			Candidates: []string{},
			Warnings:   []string{"no analysis candidates selected"},
		}, nil
	}

	return &iteration.Update{
		Phase:      iteration.PhaseAnalyze,
		Candidates: candidates,
	}, nil
}

// analyze runs one analysis per candidate. A per-ticker failure degrades to
// a hold result; it never aborts the iteration. Results merge sorted by
// ticker so resumed runs produce identical state.
func (s *Sequencer) analyze(ctx context.Context, state *iteration.WorkflowState) (*iteration.Update, error) {
	log := logger.Get()
	asOf := s.cfg.now()

	var fresh []iteration.AnalysisResult
	var warnings []string

	for _, ticker := range state.Candidates {
		if len(state.Analyses)+len(fresh) >= s.cfg.MaxAnalyses {
			break
		}
		if state.AnalysisFor(ticker) != nil {
			continue
		}

		result, err := s.deps.Analysis.Analyze(ctx, ticker, asOf)
		if err != nil {
			log.Warnw("analysis failed, recording degraded hold",
				"ticker", ticker,
				"error", err)
			warnings = append(warnings, fmt.Sprintf("analysis failed for %s: %v", ticker, err))
			result = &iteration.AnalysisResult{
				Ticker:         ticker,
				Recommendation: "hold",
				Conviction:     0,
				Degraded:       true,
				AnalyzedAt:     asOf,
			}
		}

		fresh = append(fresh, *result)
		metrics.RecordAnalysis(result.Recommendation, result.Degraded)
		s.deps.Events.AnalysisCompleted(ctx, state.IterationID, *result)

		if err := s.deps.Reports.WriteAnalysis(ctx, *result); err != nil {
			log.Warnw("report write failed", "ticker", ticker, "error", err)
			warnings = append(warnings, fmt.Sprintf("report write failed for %s: %v", ticker, err))
		}

		entry := &history.Entry{
			ID:             uuid.New(),
			Ticker:         result.Ticker,
			IterationID:    state.IterationID,
			Recommendation: history.Recommendation(result.Recommendation),
			Conviction:     result.Conviction,
			Summary:        result.Thesis,
			AnalyzedAt:     asOf,
		}
		if err := s.deps.Recency.Record(ctx, entry); err != nil {
			log.Warnw("history write failed", "ticker", ticker, "error", err)
			warnings = append(warnings, fmt.Sprintf("history write failed for %s: %v", ticker, err))
		}
	}

	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Ticker < fresh[j].Ticker })

	return &iteration.Update{
		Phase:    iteration.PhaseDecide,
		Analyses: fresh,
		Warnings: warnings,
	}, nil
}

// decide turns analyses into intents and runs every intent through the risk
// validator. A decider failure degrades to zero intents; the iteration still
// finalizes with a summary. No surviving intents branches to finalize.
func (s *Sequencer) decide(ctx context.Context, state *iteration.WorkflowState) (*iteration.Update, error) {
	log := logger.Get()

	var warnings []string
	proposed, err := s.deps.Decider.DecideTrades(ctx, DecisionInput{
		Account:     state.Account,
		Positions:   state.Positions,
		Analyses:    state.Analyses,
		LastSummary: state.LastSummary,
		TradesToday: state.TradesToday,
	})
	if err != nil {
		log.Warnw("trade decision failed, proceeding without trades", "error", err)
		warnings = append(warnings, fmt.Sprintf("trade decision failed: %v", err))
		proposed = nil
	}

	var approved []iteration.TradeIntent
	var rejections []iteration.ConstraintRejection
	for _, intent := range proposed {
		verdict := risk.ValidateTrade(intent, state.Account, state.Positions,
			s.cfg.Constraints, state.TradesToday+len(approved))
		if !verdict.Allowed {
			log.Infow("intent rejected by risk limits",
				"ticker", intent.Ticker,
				"action", intent.Action,
				"rule", verdict.Rule,
				"reason", verdict.Reason)
			metrics.RecordConstraintRejection(verdict.Rule)
			rejections = append(rejections, iteration.ConstraintRejection{
				Ticker: intent.Ticker,
				Action: intent.Action,
				Rule:   verdict.Rule,
				Reason: verdict.Reason,
			})
			continue
		}
		approved = append(approved, intent)
	}

	next := iteration.PhaseExecute
	if len(approved) == 0 {
		next = iteration.PhaseFinalize
	}

	return &iteration.Update{
		Phase:      next,
		Intents:    approved,
		Rejections: rejections,
		Warnings:   warnings,
	}, nil
}

// execute submits approved intents in decision order. A broker rejection or
// submission failure is recorded on that trade and the rest continue.
// Already-executed intents are skipped so a resume cannot double-submit.
func (s *Sequencer) execute(ctx context.Context, state *iteration.WorkflowState) (*iteration.Update, error) {
	log := logger.Get()

	var executed []iteration.ExecutedTrade
	var warnings []string

	for _, intent := range state.Intents {
		if state.HasExecuted(intent.Ticker, intent.Action) {
			log.Infow("intent already submitted, skipping",
				"ticker", intent.Ticker,
				"action", intent.Action)
			continue
		}

		trade := iteration.ExecutedTrade{
			Ticker:      intent.Ticker,
			Action:      intent.Action,
			Quantity:    intent.Quantity,
			SubmittedAt: s.cfg.now(),
		}

		result, err := s.deps.Trading.SubmitOrder(ctx, intent)
		if err != nil {
			log.Errorw("order submission failed",
				"ticker", intent.Ticker,
				"action", intent.Action,
				"error", err)
			warnings = append(warnings, fmt.Sprintf("order submission failed for %s: %v", intent.Ticker, err))
			trade.Status = "rejected"
		} else {
			trade.OrderID = result.OrderID
			trade.Status = result.Status
		}

		executed = append(executed, trade)
		metrics.RecordTrade(trade.Action, trade.Status)
		s.deps.Events.TradeSubmitted(ctx, state.IterationID, trade)

		if trade.Status != "submitted" {
			continue
		}

		if err := s.deps.TradeLog.Record(ctx, state.IterationID, trade); err != nil {
			log.Warnw("trade log write failed", "order_id", trade.OrderID, "error", err)
			warnings = append(warnings, fmt.Sprintf("trade log write failed for %s: %v", intent.Ticker, err))
		}
		if err := s.deps.Trades.Increment(ctx); err != nil {
			log.Warnw("trade counter increment failed", "error", err)
			warnings = append(warnings, fmt.Sprintf("trade counter increment failed: %v", err))
		}
	}

	return &iteration.Update{
		Phase:    iteration.PhaseFinalize,
		Executed: executed,
		Warnings: warnings,
	}, nil
}

// finalize writes the iteration summary. A summarizer failure falls back to
// a locally rendered summary so the next run always has context.
func (s *Sequencer) finalize(ctx context.Context, state *iteration.WorkflowState) (*iteration.Update, error) {
	log := logger.Get()

	var warnings []string

	summary, err := s.deps.Summarizer.Summarize(ctx, state)
	if err != nil || summary == "" {
		if err != nil {
			log.Warnw("summarizer failed, using fallback summary", "error", err)
			warnings = append(warnings, fmt.Sprintf("summarizer failed: %v", err))
		}
		summary = reports.FallbackSummary(state)
	}

	if err := s.deps.Summaries.PutSummary(ctx, state.IterationID, summary); err != nil {
		log.Warnw("summary write failed", "error", err)
		warnings = append(warnings, fmt.Sprintf("summary write failed: %v", err))
	}

	completedAt := s.cfg.now()
	return &iteration.Update{
		Phase:       iteration.PhaseDone,
		Summary:     &summary,
		CompletedAt: &completedAt,
		Warnings:    warnings,
	}, nil
}
