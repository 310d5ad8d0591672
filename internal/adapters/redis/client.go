package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mintrader/internal/adapters/config"
)

// Client wraps the Redis client
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks Redis connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// TradeCounter tracks the number of trades submitted per trading day.
// The counter is shared state between iterations within the same day, so it
// lives in Redis rather than in the per-iteration workflow state.
type TradeCounter struct {
	rdb *redis.Client
	loc *time.Location
}

// NewTradeCounter creates a daily trade counter in the given trading timezone
func NewTradeCounter(c *Client, loc *time.Location) *TradeCounter {
	return &TradeCounter{rdb: c.rdb, loc: loc}
}

func (t *TradeCounter) key(now time.Time) string {
	return fmt.Sprintf("mintrader:trades:%s", now.In(t.loc).Format("2006-01-02"))
}

// Today returns the number of trades submitted so far today
func (t *TradeCounter) Today(ctx context.Context) (int, error) {
	n, err := t.rdb.Get(ctx, t.key(time.Now())).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Increment bumps the daily counter. Called only after a successful order
// submission. The key expires after 48h so stale days clean themselves up.
func (t *TradeCounter) Increment(ctx context.Context) error {
	key := t.key(time.Now())
	pipe := t.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}
