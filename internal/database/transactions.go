package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/models"
)

// CreateTransaction appends a transaction to the ledger. ExecutedAt is
// assigned here, never taken from the caller.
func (db *DB) CreateTransaction(t *models.Transaction) error {
	query := `
		INSERT INTO transactions (portfolio_id, ticker, kind, quantity, price, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		t.PortfolioID, t.Ticker, t.Kind, t.Quantity, t.Price, now,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	t.ExecutedAt = now
	return nil
}

// GetTransaction retrieves a transaction by ID, scoped to the owner of its
// portfolio.
func (db *DB) GetTransaction(id, userID int64) (*models.Transaction, error) {
	query := `
		SELECT t.id, t.portfolio_id, t.ticker, t.kind, t.quantity, t.price, t.executed_at
		FROM transactions t
		JOIN portfolios p ON p.id = t.portfolio_id
		WHERE t.id = $1 AND p.user_id = $2
	`
	var t models.Transaction
	err := db.conn.QueryRow(query, id, userID).Scan(
		&t.ID, &t.PortfolioID, &t.Ticker, &t.Kind, &t.Quantity, &t.Price, &t.ExecutedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

// ListTransactions returns all transactions across a user's portfolios
func (db *DB) ListTransactions(userID int64) ([]*models.Transaction, error) {
	query := `
		SELECT t.id, t.portfolio_id, t.ticker, t.kind, t.quantity, t.price, t.executed_at
		FROM transactions t
		JOIN portfolios p ON p.id = t.portfolio_id
		WHERE p.user_id = $1
		ORDER BY t.id
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// TransactionsForPortfolio returns a portfolio's full ledger in insertion
// order. The accounting engine replays this sequence as-is; no re-sort by
// executed_at happens anywhere.
func (db *DB) TransactionsForPortfolio(portfolioID int64) ([]models.Transaction, error) {
	query := `
		SELECT id, portfolio_id, ticker, kind, quantity, price, executed_at
		FROM transactions
		WHERE portfolio_id = $1
		ORDER BY id
	`
	rows, err := db.conn.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.Ticker, &t.Kind, &t.Quantity, &t.Price, &t.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// SumTransactionQuantity sums quantities of one kind for a portfolio+ticker
// pair. Missing rows sum to zero.
func (db *DB) SumTransactionQuantity(portfolioID int64, ticker string, kind models.TransactionKind) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM transactions
		WHERE portfolio_id = $1 AND ticker = $2 AND kind = $3
	`
	var sum decimal.Decimal
	err := db.conn.QueryRow(query, portfolioID, ticker, kind).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transaction quantity: %w", err)
	}
	return sum, nil
}

// UpdateTransaction rewrites a transaction's user-settable fields, scoped
// to the owner. ExecutedAt is left untouched.
func (db *DB) UpdateTransaction(t *models.Transaction, userID int64) error {
	query := `
		UPDATE transactions SET ticker = $3, kind = $4, quantity = $5, price = $6
		FROM portfolios p
		WHERE transactions.id = $1 AND transactions.portfolio_id = p.id AND p.user_id = $2
	`
	result, err := db.conn.Exec(query, t.ID, userID, t.Ticker, t.Kind, t.Quantity, t.Price)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes a transaction, scoped to the owner
func (db *DB) DeleteTransaction(id, userID int64) error {
	query := `
		DELETE FROM transactions t
		USING portfolios p
		WHERE t.id = $1 AND t.portfolio_id = p.id AND p.user_id = $2
	`
	result, err := db.conn.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.Ticker, &t.Kind, &t.Quantity, &t.Price, &t.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &t)
	}
	return txs, nil
}
