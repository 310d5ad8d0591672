package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintrader/pkg/errors"
)

type mockRepo struct {
	entries []Entry
	err     error

	gotCutoff time.Time
}

func (m *mockRepo) Insert(ctx context.Context, entry *Entry) error {
	m.entries = append(m.entries, *entry)
	return m.err
}

func (m *mockRepo) RecentSince(ctx context.Context, cutoff time.Time) ([]Entry, error) {
	m.gotCutoff = cutoff
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func newService(repo *mockRepo, now time.Time) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return now }
	return s
}

func entry(ticker string, analyzedAt time.Time, rec Recommendation) Entry {
	return Entry{
		ID:             uuid.New(),
		Ticker:         ticker,
		Recommendation: rec,
		AnalyzedAt:     analyzedAt,
	}
}

func TestRecentlyAnalyzed_OneRowPerTickerMostRecentFirst(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{entries: []Entry{
		entry("AAPL", now.AddDate(0, 0, -1), RecommendationHold),
		entry("MSFT", now.AddDate(0, 0, -2), RecommendationBuy),
		entry("AAPL", now.AddDate(0, 0, -5), RecommendationSell), // older duplicate
	}}
	svc := newService(repo, now)

	got := svc.RecentlyAnalyzed(context.Background(), 14)
	require.Len(t, got, 2)

	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, 1, got[0].DaysAgo)
	assert.Equal(t, RecommendationHold, got[0].Recommendation)

	assert.Equal(t, "MSFT", got[1].Ticker)
	assert.Equal(t, 2, got[1].DaysAgo)
}

func TestRecentlyAnalyzed_UsesThresholdCutoff(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{}
	svc := newService(repo, now)

	svc.RecentlyAnalyzed(context.Background(), 3)
	assert.Equal(t, now.AddDate(0, 0, -3), repo.gotCutoff)
}

func TestRecentlyAnalyzed_FailsOpenOnStoreError(t *testing.T) {
	repo := &mockRepo{err: errors.ErrUnavailable}
	svc := newService(repo, time.Now())

	got := svc.RecentlyAnalyzed(context.Background(), 14)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHardExcluded(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{entries: []Entry{
		entry("AAPL", now.AddDate(0, 0, -1), RecommendationHold),
		entry("NVDA", now.AddDate(0, 0, -2), RecommendationBuy),
	}}
	svc := newService(repo, now)

	excluded := svc.HardExcluded(context.Background(), 3)
	assert.True(t, excluded["AAPL"])
	assert.True(t, excluded["NVDA"])
	assert.False(t, excluded["MSFT"])
}

func TestHardExcluded_FailsOpenToEmptySet(t *testing.T) {
	repo := &mockRepo{err: errors.ErrUnavailable}
	svc := newService(repo, time.Now())

	excluded := svc.HardExcluded(context.Background(), 3)
	assert.Empty(t, excluded)
}
