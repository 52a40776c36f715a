package portfolio

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/metrics"
	"github.com/fcraft/portfolio-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PortfolioValue computes the aggregate valuation for a portfolio. A
// portfolio with no open positions yields all-zero metrics. Monetary
// outputs are rounded to 2 decimal places; accumulation is unrounded.
func (s *Service) PortfolioValue(ctx context.Context, portfolioID int64) (*models.PortfolioValue, error) {
	positions, err := s.Positions(portfolioID)
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	totalCost := decimal.Zero
	for _, ticker := range sortedTickers(positions) {
		pos := positions[ticker]
		price := s.lookupPrice(ctx, ticker, pos.AverageCost)
		totalValue = totalValue.Add(pos.Quantity.Mul(price))
		totalCost = totalCost.Add(pos.TotalCost)
	}

	gainLoss := totalValue.Sub(totalCost)
	pct := decimal.Zero
	if totalCost.IsPositive() {
		pct = gainLoss.Div(totalCost).Mul(hundred)
	}

	return &models.PortfolioValue{
		TotalValue:         totalValue.Round(2),
		TotalCost:          totalCost.Round(2),
		TotalGainLoss:      gainLoss.Round(2),
		GainLossPercentage: pct.Round(2),
	}, nil
}

// StockPositions returns per-ticker valuation detail, sorted by descending
// current value. An empty portfolio yields an empty slice.
func (s *Service) StockPositions(ctx context.Context, portfolioID int64) ([]models.StockPosition, error) {
	positions, err := s.Positions(portfolioID)
	if err != nil {
		return nil, err
	}

	details := make([]models.StockPosition, 0, len(positions))
	for _, ticker := range sortedTickers(positions) {
		pos := positions[ticker]
		price := s.lookupPrice(ctx, ticker, pos.AverageCost)

		currentValue := pos.Quantity.Mul(price)
		gainLoss := currentValue.Sub(pos.TotalCost)
		pct := decimal.Zero
		if pos.TotalCost.IsPositive() {
			pct = gainLoss.Div(pos.TotalCost).Mul(hundred)
		}

		details = append(details, models.StockPosition{
			Ticker:             ticker,
			Quantity:           pos.Quantity.Round(2),
			AverageCost:        pos.AverageCost.Round(2),
			CurrentPrice:       price.Round(2),
			CurrentValue:       currentValue.Round(2),
			CostBasis:          pos.TotalCost.Round(2),
			GainLoss:           gainLoss.Round(2),
			GainLossPercentage: pct.Round(2),
		})
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].CurrentValue.GreaterThan(details[j].CurrentValue)
	})
	return details, nil
}

// lookupPrice fetches the current price for a ticker with a bounded
// timeout. On failure or timeout it substitutes the position's average
// cost so one bad quote never fails the whole valuation.
func (s *Service) lookupPrice(ctx context.Context, ticker string, fallback decimal.Decimal) decimal.Decimal {
	lookupCtx, cancel := context.WithTimeout(ctx, s.priceTimeout)
	defer cancel()

	price, err := s.prices.CurrentPrice(lookupCtx, ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).
			Msg("price lookup failed, falling back to average cost")
		metrics.PriceFallbacks.WithLabelValues(ticker).Inc()
		return fallback
	}
	return price
}

// sortedTickers gives a deterministic replay order for map iteration.
func sortedTickers(positions map[string]*models.Position) []string {
	tickers := make([]string, 0, len(positions))
	for t := range positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
