package database

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcraft/portfolio-tracker/internal/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewWithConn(conn), mock
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestCreateUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`)).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("alice@example.com", "alice", "hashed", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	user := &models.User{Email: "alice@example.com", Username: "alice", HashedPassword: "hashed"}
	require.NoError(t, db.CreateUser(user))

	assert.Equal(t, int64(7), user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := db.CreateUser(&models.User{Email: "alice@example.com", Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, username, hashed_password, disabled, created_at`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "disabled", "created_at"}))

	_, err := db.GetUserByUsername("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserByID(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, username, hashed_password, disabled, created_at`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "disabled", "created_at"}).
			AddRow(7, "alice@example.com", "alice", "hashed", false, now))

	user, err := db.GetUserByID(7)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

// ---------------------------------------------------------------------------
// Portfolios
// ---------------------------------------------------------------------------

func TestCreatePortfolio(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO portfolios (user_id, name, created_at)`)).
		WithArgs(int64(7), "Retirement", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	p := &models.Portfolio{UserID: 7, Name: "Retirement"}
	require.NoError(t, db.CreatePortfolio(p))
	assert.Equal(t, int64(3), p.ID)
}

func TestGetPortfolio_ScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(3), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at"}))

	_, err := db.GetPortfolio(3, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPortfolios(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM portfolios`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at"}).
			AddRow(1, 7, "Retirement", now).
			AddRow(2, 7, "Trading", now))

	portfolios, err := db.ListPortfolios(7)
	require.NoError(t, err)
	require.Len(t, portfolios, 2)
	assert.Equal(t, "Trading", portfolios[1].Name)
}

func TestUpdatePortfolio_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE portfolios SET name = $3`)).
		WithArgs(int64(3), int64(7), "Renamed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.UpdatePortfolio(&models.Portfolio{ID: 3, UserID: 7, Name: "Renamed"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePortfolio(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM portfolios WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, db.DeletePortfolio(3, 7))
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

func TestCreateTransaction_AssignsExecutedAt(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO transactions`)).
		WithArgs(int64(3), "AAPL", models.KindBuy, decimal.NewFromInt(10), decimal.NewFromInt(150), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	tx := &models.Transaction{
		PortfolioID: 3,
		Ticker:      "AAPL",
		Kind:        models.KindBuy,
		Quantity:    decimal.NewFromInt(10),
		Price:       decimal.NewFromInt(150),
	}
	require.NoError(t, db.CreateTransaction(tx))

	assert.Equal(t, int64(11), tx.ID)
	assert.False(t, tx.ExecutedAt.IsZero())
}

func TestTransactionsForPortfolio_InsertionOrder(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY id`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "portfolio_id", "ticker", "kind", "quantity", "price", "executed_at"}).
			AddRow(1, 3, "AAPL", "buy", "10", "150", now).
			AddRow(2, 3, "AAPL", "sell", "5", "160", now))

	txs, err := db.TransactionsForPortfolio(3)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, models.KindBuy, txs[0].Kind)
	assert.Equal(t, models.KindSell, txs[1].Kind)
}

func TestSumTransactionQuantity_EmptyIsZero(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`COALESCE(SUM(quantity), 0)`)).
		WithArgs(int64(3), "AAPL", models.KindSell).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))

	sum, err := db.SumTransactionQuantity(3, "AAPL", models.KindSell)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestGetTransaction_ScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN portfolios p ON p.id = t.portfolio_id`)).
		WithArgs(int64(11), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "portfolio_id", "ticker", "kind", "quantity", "price", "executed_at"}))

	_, err := db.GetTransaction(11, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE transactions SET`)).
		WithArgs(int64(11), int64(7), "AAPL", models.KindBuy, decimal.NewFromInt(1), decimal.NewFromInt(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx := &models.Transaction{
		ID:       11,
		Ticker:   "AAPL",
		Kind:     models.KindBuy,
		Quantity: decimal.NewFromInt(1),
		Price:    decimal.NewFromInt(1),
	}
	err := db.UpdateTransaction(tx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM transactions t`)).
		WithArgs(int64(11), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, db.DeleteTransaction(11, 7))
}
