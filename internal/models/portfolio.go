package models

import "time"

// Portfolio groups transactions under a single owner.
type Portfolio struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
