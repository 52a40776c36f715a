package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/metrics"
	"github.com/fcraft/portfolio-tracker/internal/models"
)

// AssertSellable checks a proposed sell against current holdings. The check
// is all-or-nothing: a sell larger than the position is rejected outright
// with an *InsufficientHoldingsError. Buys are never subject to this check.
func (s *Service) AssertSellable(portfolioID int64, ticker string, quantity decimal.Decimal) error {
	ticker = NormalizeTicker(ticker)

	available, err := s.CurrentPosition(portfolioID, ticker)
	if err != nil {
		return err
	}

	if quantity.GreaterThan(decimal.NewFromInt(available)) {
		metrics.OversellRejections.Inc()
		return &InsufficientHoldingsError{
			Ticker:    ticker,
			Available: available,
			Requested: quantity,
		}
	}
	return nil
}

// RecordTransaction validates a transaction and appends it to the ledger.
// For sells, the holdings check and the insert run under a per-(portfolio,
// ticker) lock so two concurrent sells cannot both pass against the same
// stale position.
func (s *Service) RecordTransaction(t *models.Transaction) error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: kind must be buy or sell", ErrInvalidInput)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	t.Ticker = NormalizeTicker(t.Ticker)
	if t.Ticker == "" || len(t.Ticker) > 10 {
		return fmt.Errorf("%w: ticker must be 1-10 characters", ErrInvalidInput)
	}

	if t.Kind == models.KindSell {
		mu := s.locks.lock(t.PortfolioID, t.Ticker)
		defer mu.Unlock()

		if err := s.AssertSellable(t.PortfolioID, t.Ticker, t.Quantity); err != nil {
			return err
		}
	}

	return s.ledger.CreateTransaction(t)
}
