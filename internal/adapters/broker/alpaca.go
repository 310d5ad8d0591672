package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"mintrader/internal/domain/iteration"
	"mintrader/internal/domain/portfolio"
	"mintrader/internal/pipeline"
	"mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

// AlpacaClient implements the trading gateway against the Alpaca paper
// trading REST API. All requests share one client-side rate limiter.
type AlpacaClient struct {
	http    *resty.Client
	limiter *rate.Limiter
}

var _ pipeline.TradingGateway = (*AlpacaClient)(nil)

// Config configures the Alpaca client
type Config struct {
	BaseURL      string
	APIKey       string
	APISecret    string
	Timeout      time.Duration
	ReqPerMinute int
}

// NewAlpacaClient creates the broker adapter
func NewAlpacaClient(cfg Config) *AlpacaClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("APCA-API-KEY-ID", cfg.APIKey).
		SetHeader("APCA-API-SECRET-KEY", cfg.APISecret).
		SetHeader("Accept", "application/json")

	rpm := cfg.ReqPerMinute
	if rpm <= 0 {
		rpm = 200
	}

	return &AlpacaClient{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 5),
	}
}

type accountDTO struct {
	Cash           string `json:"cash"`
	BuyingPower    string `json:"buying_power"`
	PortfolioValue string `json:"portfolio_value"`
	Equity         string `json:"equity"`
}

type positionDTO struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
	CurrentPrice  string `json:"current_price"`
	MarketValue   string `json:"market_value"`
	UnrealizedPct string `json:"unrealized_plpc"`
}

type orderDTO struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Qty       string    `json:"qty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type clockDTO struct {
	IsOpen    bool      `json:"is_open"`
	NextOpen  time.Time `json:"next_open"`
	NextClose time.Time `json:"next_close"`
}

type apiErrorDTO struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetAccount fetches the account snapshot
func (c *AlpacaClient) GetAccount(ctx context.Context) (*portfolio.Account, error) {
	var dto accountDTO
	if err := c.get(ctx, "/v2/account", &dto); err != nil {
		return nil, err
	}
	return &portfolio.Account{
		Cash:           mustDecimal(dto.Cash),
		BuyingPower:    mustDecimal(dto.BuyingPower),
		PortfolioValue: mustDecimal(dto.PortfolioValue),
		Equity:         mustDecimal(dto.Equity),
	}, nil
}

// GetPositions fetches all open positions. Holding age is unknown at the
// broker; callers derive it from the trade log.
func (c *AlpacaClient) GetPositions(ctx context.Context) ([]portfolio.Position, error) {
	var dtos []positionDTO
	if err := c.get(ctx, "/v2/positions", &dtos); err != nil {
		return nil, err
	}

	positions := make([]portfolio.Position, 0, len(dtos))
	for _, d := range dtos {
		pnlPct, _ := mustDecimal(d.UnrealizedPct).Mul(decimal.NewFromInt(100)).Float64()
		positions = append(positions, portfolio.Position{
			Ticker:           d.Symbol,
			Quantity:         mustDecimal(d.Qty),
			EntryPrice:       mustDecimal(d.AvgEntryPrice),
			CurrentPrice:     mustDecimal(d.CurrentPrice),
			MarketValue:      mustDecimal(d.MarketValue),
			UnrealizedPnLPct: pnlPct,
			HoldingDays:      -1,
		})
	}
	return positions, nil
}

// GetOpenOrders fetches orders still working at the broker
func (c *AlpacaClient) GetOpenOrders(ctx context.Context) ([]portfolio.OpenOrder, error) {
	var dtos []orderDTO
	if err := c.get(ctx, "/v2/orders?status=open", &dtos); err != nil {
		return nil, err
	}

	orders := make([]portfolio.OpenOrder, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, portfolio.OpenOrder{
			OrderID:   d.ID,
			Ticker:    d.Symbol,
			Side:      d.Side,
			Quantity:  mustDecimal(d.Qty),
			Status:    d.Status,
			CreatedAt: d.CreatedAt,
		})
	}
	return orders, nil
}

// SubmitOrder places a day market order. Broker-side rejections come back as
// a rejected OrderResult, not an error; only transport failures error.
func (c *AlpacaClient) SubmitOrder(ctx context.Context, intent iteration.TradeIntent) (*pipeline.OrderResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	body := map[string]interface{}{
		"symbol":        intent.Ticker,
		"qty":           fmt.Sprintf("%g", intent.Quantity),
		"side":          intent.Action,
		"type":          "market",
		"time_in_force": "day",
	}

	var dto orderDTO
	var apiErr apiErrorDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&dto).
		SetError(&apiErr).
		Post("/v2/orders")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrGatewayUnavailable, "submit order: %v", err)
	}

	if resp.IsError() {
		if resp.StatusCode() >= 500 {
			return nil, errors.Wrapf(errors.ErrGatewayUnavailable, "submit order: status %d", resp.StatusCode())
		}
		logger.Get().Warnw("order rejected by broker",
			"ticker", intent.Ticker,
			"action", intent.Action,
			"status", resp.StatusCode(),
			"detail", apiErr.Message)
		return &pipeline.OrderResult{
			Status: "rejected",
			Detail: apiErr.Message,
		}, nil
	}

	return &pipeline.OrderResult{
		OrderID: dto.ID,
		Status:  "submitted",
	}, nil
}

// CancelOrder cancels a working order
func (c *AlpacaClient) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/v2/orders/" + orderID)
	if err != nil {
		return errors.Wrapf(errors.ErrGatewayUnavailable, "cancel order: %v", err)
	}
	if resp.StatusCode() == 404 {
		return errors.Wrapf(errors.ErrNotFound, "order %s", orderID)
	}
	if resp.IsError() {
		return errors.Wrapf(errors.ErrGatewayUnavailable, "cancel order: status %d", resp.StatusCode())
	}
	return nil
}

// GetClock fetches the market clock
func (c *AlpacaClient) GetClock(ctx context.Context) (*pipeline.Clock, error) {
	var dto clockDTO
	if err := c.get(ctx, "/v2/clock", &dto); err != nil {
		return nil, err
	}
	return &pipeline.Clock{
		IsOpen:    dto.IsOpen,
		NextOpen:  dto.NextOpen,
		NextClose: dto.NextClose,
	}, nil
}

func (c *AlpacaClient) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return errors.Wrapf(errors.ErrGatewayUnavailable, "GET %s: %v", path, err)
	}
	if resp.IsError() {
		return errors.Wrapf(errors.ErrGatewayUnavailable, "GET %s: status %d", path, resp.StatusCode())
	}
	return nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
