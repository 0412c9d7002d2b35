package models

import "time"

// Review represents a single product review left by an authenticated user
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int // 1..5
	Comment   string
	CreatedAt time.Time
}
