package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/models"
)

// CurrentPosition returns the net share count for a portfolio+ticker pair:
// the sum of buys minus the sum of sells, truncated toward zero. A pair
// with no transactions yields 0.
func (s *Service) CurrentPosition(portfolioID int64, ticker string) (int64, error) {
	ticker = NormalizeTicker(ticker)

	buys, err := s.ledger.SumTransactionQuantity(portfolioID, ticker, models.KindBuy)
	if err != nil {
		return 0, fmt.Errorf("failed to sum buys for %s: %w", ticker, err)
	}
	sells, err := s.ledger.SumTransactionQuantity(portfolioID, ticker, models.KindSell)
	if err != nil {
		return 0, fmt.Errorf("failed to sum sells for %s: %w", ticker, err)
	}

	// Truncation, not rounding: fractional shares are discarded.
	return buys.Sub(sells).IntPart(), nil
}

// Positions replays the portfolio's full ledger with the average-cost
// method and returns the open position per ticker. Tickers whose net
// quantity ends at or below zero are dropped.
//
// Replay happens in insertion order, not executed_at order. Backdated
// transactions therefore affect the average cost as of when they were
// inserted, not when they economically occurred.
func (s *Service) Positions(portfolioID int64) (map[string]*models.Position, error) {
	txs, err := s.ledger.TransactionsForPortfolio(portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for portfolio %d: %w", portfolioID, err)
	}

	positions := make(map[string]*models.Position)
	for _, tx := range txs {
		ticker := NormalizeTicker(tx.Ticker)

		pos, ok := positions[ticker]
		if !ok {
			pos = &models.Position{Ticker: ticker}
			positions[ticker] = pos
		}

		switch tx.Kind {
		case models.KindBuy:
			pos.TotalCost = pos.TotalCost.Add(tx.Quantity.Mul(tx.Price))
			pos.Quantity = pos.Quantity.Add(tx.Quantity)
			if pos.Quantity.IsPositive() {
				pos.AverageCost = pos.TotalCost.Div(pos.Quantity)
			}
		case models.KindSell:
			pos.Quantity = pos.Quantity.Sub(tx.Quantity)
			if pos.Quantity.IsPositive() {
				// A sell leaves the per-share average untouched; total
				// cost shrinks in proportion to the remaining shares.
				pos.TotalCost = pos.Quantity.Mul(pos.AverageCost)
			} else {
				pos.TotalCost = decimal.Zero
				pos.AverageCost = decimal.Zero
			}
		}
	}

	for ticker, pos := range positions {
		if !pos.Quantity.IsPositive() {
			delete(positions, ticker)
		}
	}
	return positions, nil
}
