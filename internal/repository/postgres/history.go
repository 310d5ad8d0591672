package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"mintrader/internal/domain/history"
	"mintrader/pkg/errors"
)

// HistoryRepository persists analysis outcomes
type HistoryRepository struct {
	db *sqlx.DB
}

var _ history.Repository = (*HistoryRepository)(nil)

// NewHistoryRepository creates the analysis history repository
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert appends one analysis outcome
func (r *HistoryRepository) Insert(ctx context.Context, entry *history.Entry) error {
	query := `
		INSERT INTO analysis_history (id, ticker, iteration_id, recommendation, conviction, summary, analyzed_at)
		VALUES (:id, :ticker, :iteration_id, :recommendation, :conviction, :summary, :analyzed_at)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return errors.Wrap(err, "insert analysis history")
	}
	return nil
}

// RecentSince returns entries analyzed at or after cutoff, newest first
func (r *HistoryRepository) RecentSince(ctx context.Context, cutoff time.Time) ([]history.Entry, error) {
	var entries []history.Entry
	query := `
		SELECT id, ticker, iteration_id, recommendation, conviction, summary, analyzed_at
		FROM analysis_history
		WHERE analyzed_at >= $1
		ORDER BY analyzed_at DESC`

	if err := r.db.SelectContext(ctx, &entries, query, cutoff); err != nil {
		return nil, errors.Wrap(err, "select analysis history")
	}
	return entries, nil
}
