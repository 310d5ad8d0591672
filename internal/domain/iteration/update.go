package iteration

import (
	"time"

	"mintrader/internal/domain/portfolio"
	"mintrader/pkg/errors"
)

// Update is the delta a step returns. Nil fields leave the state untouched;
// non-nil scalar fields replace; Analyses, Executed, Rejections and Warnings
// append. Steps never mutate the state they are given.
type Update struct {
	Phase Phase

	Account     *portfolio.Account
	Positions   []portfolio.Position
	OpenOrders  []portfolio.OpenOrder
	LastSummary *string
	TradesToday *int

	Candidates []string

	Analyses []AnalysisResult

	Intents    []TradeIntent
	Rejections []ConstraintRejection

	Executed []ExecutedTrade

	Summary     *string
	CompletedAt *time.Time

	Warnings []string
}

// Apply merges u into a copy of s and returns the result. The input state is
// left unmodified so a failed checkpoint cannot leave a half-merged state
// behind. Returns ErrStateInvariant if the update names an unknown phase or
// tries to move the iteration backwards.
func (s *WorkflowState) Apply(u *Update) (*WorkflowState, error) {
	if !u.Phase.Valid() {
		return nil, errors.Wrapf(errors.ErrStateInvariant, "unknown phase %q", u.Phase)
	}
	if phaseOrder(u.Phase) < phaseOrder(s.Phase) {
		return nil, errors.Wrapf(errors.ErrStateInvariant,
			"phase cannot move backwards: %s -> %s", s.Phase, u.Phase)
	}

	next := *s
	next.Phase = u.Phase

	if u.Account != nil {
		next.Account = u.Account
	}
	if u.Positions != nil {
		next.Positions = u.Positions
	}
	if u.OpenOrders != nil {
		next.OpenOrders = u.OpenOrders
	}
	if u.LastSummary != nil {
		next.LastSummary = *u.LastSummary
	}
	if u.TradesToday != nil {
		next.TradesToday = *u.TradesToday
	}
	if u.Candidates != nil {
		next.Candidates = u.Candidates
	}
	if len(u.Analyses) > 0 {
		next.Analyses = append(append([]AnalysisResult{}, s.Analyses...), u.Analyses...)
	}
	if u.Intents != nil {
		next.Intents = u.Intents
	}
	if len(u.Rejections) > 0 {
		next.ConstraintRejections = append(append([]ConstraintRejection{}, s.ConstraintRejections...), u.Rejections...)
	}
	if len(u.Executed) > 0 {
		next.Executed = append(append([]ExecutedTrade{}, s.Executed...), u.Executed...)
	}
	if u.Summary != nil {
		next.Summary = *u.Summary
	}
	if u.CompletedAt != nil {
		next.CompletedAt = *u.CompletedAt
	}
	if len(u.Warnings) > 0 {
		next.Warnings = append(append([]string{}, s.Warnings...), u.Warnings...)
	}

	return &next, nil
}

func phaseOrder(p Phase) int {
	switch p {
	case PhaseAssess:
		return 0
	case PhaseSelect:
		return 1
	case PhaseAnalyze:
		return 2
	case PhaseDecide:
		return 3
	case PhaseExecute:
		return 4
	case PhaseFinalize:
		return 5
	case PhaseDone:
		return 6
	case PhaseError:
		return 7
	}
	return -1
}
