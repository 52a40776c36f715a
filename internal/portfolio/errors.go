package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a transaction fails boundary validation
// before reaching the accounting logic.
var ErrInvalidInput = errors.New("invalid transaction input")

// InsufficientHoldingsError rejects a sell whose quantity exceeds the
// current position. It carries both quantities so the caller can render a
// useful message.
type InsufficientHoldingsError struct {
	Ticker    string
	Available int64
	Requested decimal.Decimal
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings for %s: available %d, requested %s",
		e.Ticker, e.Available, e.Requested)
}
