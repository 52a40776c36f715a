package models

import "github.com/shopspring/decimal"

// Position is the accumulated holding for one ticker, derived from the
// ledger on every request and never persisted.
type Position struct {
	Ticker      string          `json:"ticker"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// StockPosition is the per-ticker valuation detail returned by the
// analytics endpoints. Monetary fields are rounded to 2 decimal places.
type StockPosition struct {
	Ticker             string          `json:"ticker"`
	Quantity           decimal.Decimal `json:"quantity"`
	AverageCost        decimal.Decimal `json:"average_cost"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	CostBasis          decimal.Decimal `json:"cost_basis"`
	GainLoss           decimal.Decimal `json:"gain_loss"`
	GainLossPercentage decimal.Decimal `json:"gain_loss_percentage"`
}

// PortfolioValue holds the aggregate valuation metrics for a portfolio.
type PortfolioValue struct {
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	TotalGainLoss      decimal.Decimal `json:"total_gain_loss"`
	GainLossPercentage decimal.Decimal `json:"gain_loss_percentage"`
}

// PortfolioAnalytics combines value and positions for a single response.
type PortfolioAnalytics struct {
	PortfolioID   int64           `json:"portfolio_id"`
	PortfolioName string          `json:"portfolio_name"`
	Value         *PortfolioValue `json:"value"`
	Positions     []StockPosition `json:"positions"`
}
