package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"mintrader/internal/domain/iteration"
	"mintrader/pkg/errors"
)

// TradeLogRepository keeps a durable log of every order submitted to the
// broker. The portfolio assessment derives position holding age from it.
type TradeLogRepository struct {
	db *sqlx.DB
}

// NewTradeLogRepository creates the trade log repository
func NewTradeLogRepository(db *sqlx.DB) *TradeLogRepository {
	return &TradeLogRepository{db: db}
}

// Record appends one submitted trade
func (r *TradeLogRepository) Record(ctx context.Context, iterationID string, trade iteration.ExecutedTrade) error {
	query := `
		INSERT INTO trade_log (order_id, iteration_id, ticker, action, quantity, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		trade.OrderID, iterationID, trade.Ticker, trade.Action,
		trade.Quantity, trade.Status, trade.SubmittedAt)
	if err != nil {
		return errors.Wrap(err, "insert trade log")
	}
	return nil
}

// LastBuyAt returns when the most recent buy for ticker was submitted.
// Returns errors.ErrNotFound when the log has no buy for the ticker.
func (r *TradeLogRepository) LastBuyAt(ctx context.Context, ticker string) (time.Time, error) {
	var submittedAt time.Time
	query := `
		SELECT submitted_at FROM trade_log
		WHERE ticker = $1 AND action = 'buy'
		ORDER BY submitted_at DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &submittedAt, query, ticker); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, errors.Wrapf(errors.ErrNotFound, "no buy recorded for %s", ticker)
		}
		return time.Time{}, errors.Wrap(err, "select last buy")
	}
	return submittedAt, nil
}
