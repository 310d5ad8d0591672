package history

import (
	"context"
	"time"

	"mintrader/pkg/logger"
)

// Service computes the recency view used to steer stock selection.
//
// Lookups fail open: if the store is unreachable we log and return an empty
// view rather than abort the iteration, trading staleness protection for
// availability. Writes do not fail open.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates the recency service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Record persists one analysis outcome
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	return s.repo.Insert(ctx, entry)
}

// RecentlyAnalyzed returns the per-ticker view of analyses within
// thresholdDays, one row per ticker (its most recent analysis), sorted by
// days_ago ascending. Fails open to an empty slice on store errors.
func (s *Service) RecentlyAnalyzed(ctx context.Context, thresholdDays int) []TickerHistory {
	log := logger.Get()

	cutoff := s.now().AddDate(0, 0, -thresholdDays)
	entries, err := s.repo.RecentSince(ctx, cutoff)
	if err != nil {
		log.Warnw("analysis history unavailable, proceeding without exclusions",
			"error", err,
			"threshold_days", thresholdDays)
		return []TickerHistory{}
	}

	// entries arrive newest first, so the first entry per ticker wins
	seen := make(map[string]bool, len(entries))
	out := make([]TickerHistory, 0, len(entries))
	for _, e := range entries {
		if seen[e.Ticker] {
			continue
		}
		seen[e.Ticker] = true
		out = append(out, TickerHistory{
			Ticker:         e.Ticker,
			DaysAgo:        s.daysAgo(e.AnalyzedAt),
			Recommendation: e.Recommendation,
			Conviction:     e.Conviction,
			Summary:        e.Summary,
		})
	}

	// newest-first input means out is already sorted by days_ago ascending
	return out
}

// HardExcluded returns the set of tickers analyzed within thresholdDays.
// These must not be re-analyzed; the selector filters them out and the
// pipeline drops any that slip through. Fails open to an empty set.
func (s *Service) HardExcluded(ctx context.Context, thresholdDays int) map[string]bool {
	excluded := make(map[string]bool)
	for _, h := range s.RecentlyAnalyzed(ctx, thresholdDays) {
		excluded[h.Ticker] = true
	}
	return excluded
}

func (s *Service) daysAgo(t time.Time) int {
	d := int(s.now().Sub(t).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
