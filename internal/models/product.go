package models

import "time"

// Product is a shop page a user asked the bot to track
type Product struct {
	ID           int64     `json:"id,omitempty"`
	UserID       string    `json:"user_id"`
	OriginalURL  string    `json:"original_url"`
	ProductName  string    `json:"product_name"`
	CurrentPrice int       `json:"current_price"`
	IsActive     bool      `json:"is_active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PriceHistory is one append-only price observation of a Product
type PriceHistory struct {
	ID         int64     `json:"id,omitempty"`
	ProductID  int64     `json:"product_id"`
	Price      int       `json:"price"`
	RecordedAt time.Time `json:"recorded_at"`
}
