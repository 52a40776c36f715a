package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fcraft/portfolio-tracker/internal/models"
)

// CreateUser inserts a new user. Username and email must be unique;
// a clash returns ErrDuplicate.
func (db *DB) CreateUser(u *models.User) error {
	var exists bool
	err := db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		u.Username, u.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	if exists {
		return fmt.Errorf("user %s: %w", u.Username, ErrDuplicate)
	}

	query := `
		INSERT INTO users (email, username, hashed_password, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	now := time.Now()
	err = db.conn.QueryRow(query, u.Email, u.Username, u.HashedPassword, u.Disabled, now).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.CreatedAt = now
	return nil
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	query := `
		SELECT id, email, username, hashed_password, disabled, created_at
		FROM users
		WHERE username = $1
	`
	var u models.User
	err := db.conn.QueryRow(query, username).Scan(
		&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.Disabled, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by its primary identifier
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	query := `
		SELECT id, email, username, hashed_password, disabled, created_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := db.conn.QueryRow(query, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.Disabled, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
