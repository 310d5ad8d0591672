package iteration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintrader/internal/domain/portfolio"
	"mintrader/pkg/errors"
)

func TestApply_ReplacesScalarsAndAdvancesPhase(t *testing.T) {
	state := NewState("it-1", time.Now())

	account := &portfolio.Account{Cash: decimal.NewFromInt(1000)}
	summary := "prior notes"
	trades := 2

	next, err := state.Apply(&Update{
		Phase:       PhaseSelect,
		Account:     account,
		LastSummary: &summary,
		TradesToday: &trades,
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseSelect, next.Phase)
	assert.Equal(t, account, next.Account)
	assert.Equal(t, "prior notes", next.LastSummary)
	assert.Equal(t, 2, next.TradesToday)

	// original untouched
	assert.Equal(t, PhaseAssess, state.Phase)
	assert.Nil(t, state.Account)
}

func TestApply_AnalysesAppendOnly(t *testing.T) {
	state := NewState("it-1", time.Now())
	state.Phase = PhaseAnalyze
	state.Analyses = []AnalysisResult{{Ticker: "AAPL", Recommendation: "hold"}}

	next, err := state.Apply(&Update{
		Phase:    PhaseDecide,
		Analyses: []AnalysisResult{{Ticker: "MSFT", Recommendation: "buy"}},
	})
	require.NoError(t, err)

	require.Len(t, next.Analyses, 2)
	assert.Equal(t, "AAPL", next.Analyses[0].Ticker)
	assert.Equal(t, "MSFT", next.Analyses[1].Ticker)

	// input slice untouched
	assert.Len(t, state.Analyses, 1)
}

func TestApply_ExecutedAndWarningsAppend(t *testing.T) {
	state := NewState("it-1", time.Now())
	state.Phase = PhaseExecute
	state.Executed = []ExecutedTrade{{Ticker: "AAPL", Action: "buy", Status: "submitted"}}
	state.Warnings = []string{"first"}

	next, err := state.Apply(&Update{
		Phase:    PhaseFinalize,
		Executed: []ExecutedTrade{{Ticker: "MSFT", Action: "sell", Status: "rejected"}},
		Warnings: []string{"second"},
	})
	require.NoError(t, err)

	require.Len(t, next.Executed, 2)
	assert.Equal(t, "MSFT", next.Executed[1].Ticker)
	assert.Equal(t, []string{"first", "second"}, next.Warnings)
}

func TestApply_RejectsBackwardPhase(t *testing.T) {
	state := NewState("it-1", time.Now())
	state.Phase = PhaseDecide

	_, err := state.Apply(&Update{Phase: PhaseSelect})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStateInvariant))
}

func TestApply_RejectsUnknownPhase(t *testing.T) {
	state := NewState("it-1", time.Now())

	_, err := state.Apply(&Update{Phase: Phase("teleport")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStateInvariant))
}

func TestApply_SamePhaseAllowed(t *testing.T) {
	state := NewState("it-1", time.Now())
	state.Phase = PhaseAnalyze

	next, err := state.Apply(&Update{
		Phase:    PhaseAnalyze,
		Analyses: []AnalysisResult{{Ticker: "NVDA"}},
	})
	require.NoError(t, err)
	assert.Equal(t, PhaseAnalyze, next.Phase)
	assert.Len(t, next.Analyses, 1)
}

func TestHasExecuted(t *testing.T) {
	state := NewState("it-1", time.Now())
	state.Executed = []ExecutedTrade{{Ticker: "AAPL", Action: "buy"}}

	assert.True(t, state.HasExecuted("AAPL", "buy"))
	assert.False(t, state.HasExecuted("AAPL", "sell"))
	assert.False(t, state.HasExecuted("MSFT", "buy"))
}

func TestPhase_Valid(t *testing.T) {
	for _, p := range []Phase{PhaseAssess, PhaseSelect, PhaseAnalyze, PhaseDecide, PhaseExecute, PhaseFinalize, PhaseDone, PhaseError} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Phase("").Valid())
	assert.False(t, Phase("rollback").Valid())
}

func TestPhase_Terminal(t *testing.T) {
	assert.True(t, PhaseDone.Terminal())
	assert.True(t, PhaseError.Terminal())
	assert.False(t, PhaseExecute.Terminal())
}

func TestFailed(t *testing.T) {
	state := NewState("it-1", time.Now())
	state.Phase = PhaseAnalyze

	failed := state.Failed("gateway down")

	assert.Equal(t, PhaseError, failed.Phase)
	assert.Equal(t, "gateway down", failed.Error)

	// original untouched
	assert.Equal(t, PhaseAnalyze, state.Phase)
	assert.Empty(t, state.Error)
}
