package models

import (
	"time"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	APIKeyHash   string // SHA-256 of the issued key; plaintext is shown once at registration
	APIKeyPrefix string // First characters of the key, for display
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
