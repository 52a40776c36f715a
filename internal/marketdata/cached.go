package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/portfolio"
)

// PriceCache is the slice of the Redis client the cached source needs.
type PriceCache interface {
	GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
	SetPrice(ctx context.Context, ticker string, price decimal.Decimal, ttl time.Duration) error
}

// CachedSource reads prices through a cache before hitting the provider.
// Cache failures degrade to direct lookups, never to request failures.
type CachedSource struct {
	source portfolio.PriceSource
	cache  PriceCache
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedSource wraps a price source with a read-through cache. A nil
// cache disables caching entirely.
func NewCachedSource(source portfolio.PriceSource, cache PriceCache, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache,
		ttl:    ttl,
		log:    log.With().Str("component", "pricecache").Logger(),
	}
}

// CurrentPrice implements portfolio.PriceSource.
func (c *CachedSource) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	ticker = portfolio.NormalizeTicker(ticker)

	if c.cache != nil {
		if price, err := c.cache.GetPrice(ctx, ticker); err == nil {
			return price, nil
		}
	}

	price, err := c.source.CurrentPrice(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}

	if c.cache != nil {
		if err := c.cache.SetPrice(ctx, ticker, price, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("failed to cache price")
		}
	}
	return price, nil
}

// Refresh overwrites the cached price for a ticker. Used by the market
// data consumer when a price event arrives.
func (c *CachedSource) Refresh(ctx context.Context, ticker string, price decimal.Decimal) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.SetPrice(ctx, portfolio.NormalizeTicker(ticker), price, c.ttl)
}
