package iteration

import (
	"time"

	"mintrader/internal/domain/portfolio"
)

// Phase is the step the iteration will execute next. An iteration always
// moves forward through the phases; a checkpoint stores the phase to resume
// from, never a phase already completed.
type Phase string

const (
	PhaseAssess   Phase = "assess"
	PhaseSelect   Phase = "select"
	PhaseAnalyze  Phase = "analyze"
	PhaseDecide   Phase = "decide"
	PhaseExecute  Phase = "execute"
	PhaseFinalize Phase = "finalize"
	PhaseDone     Phase = "done"
	PhaseError    Phase = "error"
)

// Valid reports whether p is a known phase
func (p Phase) Valid() bool {
	switch p {
	case PhaseAssess, PhaseSelect, PhaseAnalyze, PhaseDecide, PhaseExecute, PhaseFinalize, PhaseDone, PhaseError:
		return true
	}
	return false
}

// Terminal reports whether the iteration has finished, successfully or not
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseError
}

// AnalysisResult is the outcome of one deep analysis of one ticker
type AnalysisResult struct {
	Ticker         string    `json:"ticker"`
	Recommendation string    `json:"recommendation"`
	Conviction     int       `json:"conviction"`
	Thesis         string    `json:"thesis"`
	Risks          string    `json:"risks"`
	TargetPrice    float64   `json:"target_price,omitempty"`
	Degraded       bool      `json:"degraded,omitempty"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// TradeIntent is a trade the decider wants executed. Quantity is in whole
// shares; EstimatedPrice is the decider's reference price for sizing checks.
type TradeIntent struct {
	Ticker         string  `json:"ticker"`
	Action         string  `json:"action"` // buy or sell
	Quantity       float64 `json:"quantity"`
	EstimatedPrice float64 `json:"estimated_price"`
	Rationale      string  `json:"rationale"`
	Conviction     int     `json:"conviction"`
}

// Notional returns the estimated dollar value of the intent
func (t TradeIntent) Notional() float64 {
	return t.Quantity * t.EstimatedPrice
}

// ExecutedTrade is the record of one intent submitted to the broker
type ExecutedTrade struct {
	OrderID     string    `json:"order_id"`
	Ticker      string    `json:"ticker"`
	Action      string    `json:"action"`
	Quantity    float64   `json:"quantity"`
	FilledPrice float64   `json:"filled_price,omitempty"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ConstraintRejection records an intent the risk validator refused, kept in
// state so the final summary can report what was skipped and why.
type ConstraintRejection struct {
	Ticker string `json:"ticker"`
	Action string `json:"action"`
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// WorkflowState is the full record of one iteration. It is checkpointed as a
// whole after every step; on resume the sequencer picks up at Phase with
// everything before it already materialized.
type WorkflowState struct {
	IterationID string    `json:"iteration_id"`
	StartedAt   time.Time `json:"started_at"`
	Phase       Phase     `json:"phase"`

	// assess
	Account     *portfolio.Account    `json:"account,omitempty"`
	Positions   []portfolio.Position  `json:"positions,omitempty"`
	OpenOrders  []portfolio.OpenOrder `json:"open_orders,omitempty"`
	LastSummary string                `json:"last_summary,omitempty"`
	TradesToday int                   `json:"trades_today"`

	// select
	Candidates []string `json:"candidates,omitempty"`

	// analyze (append-only)
	Analyses []AnalysisResult `json:"analyses,omitempty"`

	// decide
	Intents              []TradeIntent         `json:"intents,omitempty"`
	ConstraintRejections []ConstraintRejection `json:"constraint_rejections,omitempty"`

	// execute (append-only)
	Executed []ExecutedTrade `json:"executed,omitempty"`

	// finalize
	Summary     string    `json:"summary,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	Warnings []string `json:"warnings,omitempty"`

	// Error is set once, together with PhaseError, when a step fails
	Error string `json:"error,omitempty"`
}

// Failed returns a copy of s marked as terminally failed
func (s *WorkflowState) Failed(detail string) *WorkflowState {
	failed := *s
	failed.Phase = PhaseError
	failed.Error = detail
	return &failed
}

// NewState creates the initial state for a fresh iteration
func NewState(iterationID string, startedAt time.Time) *WorkflowState {
	return &WorkflowState{
		IterationID: iterationID,
		StartedAt:   startedAt,
		Phase:       PhaseAssess,
	}
}

// HasExecuted reports whether a trade for ticker/action was already
// submitted in this iteration. Guards re-submission after a resume.
func (s *WorkflowState) HasExecuted(ticker, action string) bool {
	for _, e := range s.Executed {
		if e.Ticker == ticker && e.Action == action {
			return true
		}
	}
	return false
}

// AnalysisFor returns the analysis result for ticker, or nil
func (s *WorkflowState) AnalysisFor(ticker string) *AnalysisResult {
	for i := range s.Analyses {
		if s.Analyses[i].Ticker == ticker {
			return &s.Analyses[i]
		}
	}
	return nil
}
