package history

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation is the outcome an analysis arrived at for a ticker
type Recommendation string

const (
	RecommendationBuy  Recommendation = "buy"
	RecommendationSell Recommendation = "sell"
	RecommendationHold Recommendation = "hold"
	RecommendationSkip Recommendation = "skip"
)

// Entry is one persisted analysis outcome. Entries are append-only; the
// exclusion windows are computed over them at read time.
type Entry struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Ticker         string         `db:"ticker" json:"ticker"`
	IterationID    string         `db:"iteration_id" json:"iteration_id"`
	Recommendation Recommendation `db:"recommendation" json:"recommendation"`
	Conviction     int            `db:"conviction" json:"conviction"`
	Summary        string         `db:"summary" json:"summary"`
	AnalyzedAt     time.Time      `db:"analyzed_at" json:"analyzed_at"`
}

// TickerHistory is the per-ticker view handed to the selector: how recently
// the ticker was analyzed and what came of it, most recent first.
type TickerHistory struct {
	Ticker         string         `json:"ticker"`
	DaysAgo        int            `json:"days_ago"`
	Recommendation Recommendation `json:"recommendation"`
	Conviction     int            `json:"conviction"`
	Summary        string         `json:"summary"`
}
