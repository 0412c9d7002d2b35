package models

import (
	"time"
)

type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	ImagePath   *string // Set once an image has been uploaded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
