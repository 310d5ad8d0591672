package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintrader/internal/domain/iteration"
	"mintrader/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AlpacaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewAlpacaClient(Config{
		BaseURL:      server.URL,
		APIKey:       "key",
		APISecret:    "secret",
		Timeout:      5 * time.Second,
		ReqPerMinute: 6000,
	})
}

func TestGetAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cash": "25000.50", "buying_power": "50001.00", "portfolio_value": "100000.00", "equity": "100000.00"}`))
	})

	account, err := client.GetAccount(context.Background())
	require.NoError(t, err)

	assert.True(t, account.Cash.Equal(decimal.NewFromFloat(25000.50)))
	assert.True(t, account.PortfolioValue.Equal(decimal.NewFromInt(100000)))
}

func TestGetPositions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"symbol": "AAPL", "qty": "10", "avg_entry_price": "150.00", "current_price": "165.00", "market_value": "1650.00", "unrealized_plpc": "0.10"}]`))
	})

	positions, err := client.GetPositions(context.Background())
	require.NoError(t, err)

	require.Len(t, positions, 1)
	assert.Equal(t, "AAPL", positions[0].Ticker)
	assert.InDelta(t, 10.0, positions[0].UnrealizedPnLPct, 0.001)
	assert.Equal(t, -1, positions[0].HoldingDays)
}

func TestSubmitOrder_Submitted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "ord-1", "symbol": "AAPL", "status": "accepted"}`))
	})

	result, err := client.SubmitOrder(context.Background(), iteration.TradeIntent{
		Ticker: "AAPL", Action: "buy", Quantity: 10, EstimatedPrice: 150,
	})
	require.NoError(t, err)

	assert.Equal(t, "submitted", result.Status)
	assert.Equal(t, "ord-1", result.OrderID)
}

func TestSubmitOrder_BrokerRejectionIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code": 40310000, "message": "insufficient buying power"}`))
	})

	result, err := client.SubmitOrder(context.Background(), iteration.TradeIntent{
		Ticker: "AAPL", Action: "buy", Quantity: 10000, EstimatedPrice: 150,
	})
	require.NoError(t, err)

	assert.Equal(t, "rejected", result.Status)
	assert.Equal(t, "insufficient buying power", result.Detail)
}

func TestSubmitOrder_ServerErrorIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SubmitOrder(context.Background(), iteration.TradeIntent{
		Ticker: "AAPL", Action: "buy", Quantity: 10, EstimatedPrice: 150,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGatewayUnavailable))
}

func TestGetClock(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/clock", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_open": false, "next_open": "2026-08-31T13:30:00Z", "next_close": "2026-08-31T20:00:00Z"}`))
	})

	clock, err := client.GetClock(context.Background())
	require.NoError(t, err)

	assert.False(t, clock.IsOpen)
	assert.Equal(t, 2026, clock.NextOpen.Year())
}

func TestCancelOrder_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.CancelOrder(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
