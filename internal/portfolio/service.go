package portfolio

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/models"
)

// Ledger is the queryable transaction store the engine replays. All state
// lives here; the engine itself holds none between calls.
type Ledger interface {
	TransactionsForPortfolio(portfolioID int64) ([]models.Transaction, error)
	SumTransactionQuantity(portfolioID int64, ticker string, kind models.TransactionKind) (decimal.Decimal, error)
	CreateTransaction(t *models.Transaction) error
}

// PriceSource returns the current market price for a ticker. Lookups are
// expected to fail; the valuation engine falls back to average cost and
// never propagates the error.
type PriceSource interface {
	CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// Service is the position-accounting and valuation engine.
type Service struct {
	ledger       Ledger
	prices       PriceSource
	locks        *tickerLocks
	priceTimeout time.Duration
	log          zerolog.Logger
}

// NewService creates the engine. priceTimeout bounds each individual quote
// lookup during valuation.
func NewService(ledger Ledger, prices PriceSource, priceTimeout time.Duration, log zerolog.Logger) *Service {
	if priceTimeout <= 0 {
		priceTimeout = 5 * time.Second
	}
	return &Service{
		ledger:       ledger,
		prices:       prices,
		locks:        newTickerLocks(),
		priceTimeout: priceTimeout,
		log:          log.With().Str("component", "portfolio").Logger(),
	}
}

// NormalizeTicker uppercases a ticker symbol. All accounting comparisons
// and storage use the normalized form.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
