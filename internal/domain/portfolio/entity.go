package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a read-only snapshot of the brokerage account, taken once at
// the start of an iteration. It is never refreshed mid-iteration so that
// every step reasons about the same numbers even if fills land concurrently.
type Account struct {
	Cash           decimal.Decimal `json:"cash"`
	BuyingPower    decimal.Decimal `json:"buying_power"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	Equity         decimal.Decimal `json:"equity"`
}

// Position is one holding in the snapshot. Same staleness contract as Account.
type Position struct {
	Ticker           string          `json:"ticker"`
	Quantity         decimal.Decimal `json:"quantity"`
	EntryPrice       decimal.Decimal `json:"entry_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	MarketValue      decimal.Decimal `json:"market_value"`
	UnrealizedPnLPct float64         `json:"unrealized_pnl_pct"`

	// HoldingDays is derived from the persisted trade log at assess time.
	// -1 means unknown (position predates the trade log); the holding-period
	// constraint is skipped for unknown ages.
	HoldingDays int `json:"holding_days"`
}

// OpenOrder is a pending order in the snapshot
type OpenOrder struct {
	OrderID   string          `json:"order_id"`
	Ticker    string          `json:"ticker"`
	Side      string          `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// FindPosition returns the position for ticker, or nil
func FindPosition(positions []Position, ticker string) *Position {
	for i := range positions {
		if positions[i].Ticker == ticker {
			return &positions[i]
		}
	}
	return nil
}
