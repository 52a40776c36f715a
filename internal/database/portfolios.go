package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fcraft/portfolio-tracker/internal/models"
)

// CreatePortfolio inserts a new portfolio for a user
func (db *DB) CreatePortfolio(p *models.Portfolio) error {
	query := `
		INSERT INTO portfolios (user_id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query, p.UserID, p.Name, now).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	p.CreatedAt = now
	return nil
}

// GetPortfolio retrieves a portfolio by ID, scoped to its owner
func (db *DB) GetPortfolio(id, userID int64) (*models.Portfolio, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM portfolios
		WHERE id = $1 AND user_id = $2
	`
	var p models.Portfolio
	err := db.conn.QueryRow(query, id, userID).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("portfolio %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &p, nil
}

// ListPortfolios returns all portfolios owned by a user
func (db *DB) ListPortfolios(userID int64) ([]*models.Portfolio, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM portfolios
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*models.Portfolio
	for rows.Next() {
		var p models.Portfolio
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, &p)
	}
	return portfolios, nil
}

// UpdatePortfolio renames a portfolio, scoped to its owner
func (db *DB) UpdatePortfolio(p *models.Portfolio) error {
	query := `UPDATE portfolios SET name = $3 WHERE id = $1 AND user_id = $2`
	result, err := db.conn.Exec(query, p.ID, p.UserID, p.Name)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("portfolio %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeletePortfolio removes a portfolio and, via FK cascade, its transactions
func (db *DB) DeletePortfolio(id, userID int64) error {
	query := `DELETE FROM portfolios WHERE id = $1 AND user_id = $2`
	result, err := db.conn.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("portfolio %d: %w", id, ErrNotFound)
	}
	return nil
}
