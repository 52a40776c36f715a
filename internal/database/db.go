package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a row does not exist or is not visible to
// the requesting user.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness rule is violated.
var ErrDuplicate = errors.New("already exists")

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(connectionString string) (*DB, error) {
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// NewWithConn wraps an existing connection. Used by tests with sqlmock.
func NewWithConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks if the database is reachable
func (db *DB) Ping() error {
	return db.conn.Ping()
}
