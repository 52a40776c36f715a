package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the type of a ledger entry. Only buys and sells exist.
type TransactionKind string

const (
	KindBuy  TransactionKind = "buy"
	KindSell TransactionKind = "sell"
)

// Valid reports whether the kind is one of the two permitted values.
func (k TransactionKind) Valid() bool {
	return k == KindBuy || k == KindSell
}

// Transaction is a single buy or sell recorded against a portfolio.
// ExecutedAt is assigned by the server at creation time.
type Transaction struct {
	ID          int64           `json:"id"`
	PortfolioID int64           `json:"portfolio_id"`
	Ticker      string          `json:"ticker"`
	Kind        TransactionKind `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// TransactionEvent is the Kafka payload published after a transaction is
// appended to the ledger.
type TransactionEvent struct {
	EventType string       `json:"event_type"`
	Source    string       `json:"source"`
	Timestamp string       `json:"timestamp"`
	Data      *Transaction `json:"data"`
}

// PriceEvent is a market data update consumed from the price topic.
type PriceEvent struct {
	EventType string `json:"event_type"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Ticker string `json:"ticker"`
		Price  string `json:"price"`
	} `json:"data"`
}
