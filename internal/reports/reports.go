package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"mintrader/internal/adapters/s3"
	"mintrader/internal/domain/iteration"
)

// Writer renders analysis reports and iteration summaries and stores them in
// the object store.
type Writer struct {
	store *s3.Store
}

// NewWriter creates the report writer. store may be nil, which disables
// report persistence.
func NewWriter(store *s3.Store) *Writer {
	return &Writer{store: store}
}

// WriteAnalysis stores the sections of one completed analysis
func (w *Writer) WriteAnalysis(ctx context.Context, result iteration.AnalysisResult) error {
	if w.store == nil || result.Degraded {
		return nil
	}

	date := result.AnalyzedAt.Format("2006-01-02")

	decision := fmt.Sprintf("# %s — %s\n\nRecommendation: **%s** (conviction %d/10)\n",
		result.Ticker, date, strings.ToUpper(result.Recommendation), result.Conviction)
	if result.TargetPrice > 0 {
		decision += fmt.Sprintf("Target price: %s\n", humanize.CommafWithDigits(result.TargetPrice, 2))
	}

	sections := map[string]string{
		"thesis":   result.Thesis,
		"risks":    result.Risks,
		"decision": decision,
	}
	for name, content := range sections {
		if content == "" {
			continue
		}
		if err := w.store.PutReportSection(ctx, result.Ticker, date, name, content); err != nil {
			return err
		}
	}
	return nil
}

// FallbackSummary renders a plain-text iteration summary without the LLM.
// Used when the summarizer is unavailable so the next iteration still gets
// context. It distinguishes risk-limit skips from broker rejections from
// degraded analyses.
func FallbackSummary(state *iteration.WorkflowState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Iteration %s.\n", state.IterationID)

	if state.Account != nil {
		fmt.Fprintf(&b, "Portfolio value $%s with $%s cash across %s.\n",
			money(state.Account.PortfolioValue),
			money(state.Account.Cash),
			plural(len(state.Positions), "position"))
	}

	var degraded []string
	for _, a := range state.Analyses {
		if a.Degraded {
			degraded = append(degraded, a.Ticker)
			continue
		}
		fmt.Fprintf(&b, "Analyzed %s: %s, conviction %d.\n", a.Ticker, a.Recommendation, a.Conviction)
	}
	if len(degraded) > 0 {
		fmt.Fprintf(&b, "Analysis failed for %s; treated as hold.\n", strings.Join(degraded, ", "))
	}

	for _, e := range state.Executed {
		switch e.Status {
		case "submitted":
			fmt.Fprintf(&b, "Submitted %s %s %s shares.\n", e.Action, e.Ticker, humanize.Ftoa(e.Quantity))
		default:
			fmt.Fprintf(&b, "Broker rejected %s %s %s shares.\n", e.Action, e.Ticker, humanize.Ftoa(e.Quantity))
		}
	}

	for _, r := range state.ConstraintRejections {
		fmt.Fprintf(&b, "Skipped %s %s by risk limit %s: %s.\n", r.Action, r.Ticker, r.Rule, r.Reason)
	}

	if len(state.Intents) == 0 && len(state.ConstraintRejections) == 0 {
		b.WriteString("No trades were proposed.\n")
	}

	return b.String()
}

func money(d decimal.Decimal) string {
	f, _ := d.Float64()
	return humanize.CommafWithDigits(f, 2)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
