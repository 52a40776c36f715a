package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/config"
)

// Client wraps the Redis client with quote-caching operations
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SetPrice caches a quoted price with TTL. Prices are stored as decimal
// strings to avoid float round-tripping.
func (c *Client) SetPrice(ctx context.Context, ticker string, price decimal.Decimal, ttl time.Duration) error {
	key := fmt.Sprintf("quote:%s:price", ticker)
	return c.rdb.Set(ctx, key, price.String(), ttl).Err()
}

// GetPrice retrieves a cached price. A missing key returns redis.Nil.
func (c *Client) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	key := fmt.Sprintf("quote:%s:price", ticker)
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return decimal.Zero, err
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt cached price for %s: %w", ticker, err)
	}
	return price, nil
}
