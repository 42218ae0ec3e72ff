// Package store defines the persistence contract shared by the Supabase and
// SQL backends.
package store

import (
	"context"
	"errors"

	"shunshun-bot/internal/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("store: not found")

// HotspotRadiusKm bounds the hotspot search around the user
const HotspotRadiusKm = 5.0

// SpotStore keeps saved map locations
type SpotStore interface {
	// FindSpotByName returns the user's spot with exactly that name, or ErrNotFound
	FindSpotByName(ctx context.Context, userID, name string) (*models.Spot, error)
	// SaveSpot inserts s, or updates the user's spot with the same name.
	// created reports whether a new row was inserted.
	SaveSpot(ctx context.Context, s models.Spot) (saved models.Spot, created bool, err error)
	// UpdateSpot overwrites the spot with s.ID
	UpdateSpot(ctx context.Context, s models.Spot) error
	// ListSpots returns the user's spots, optionally filtered by category
	ListSpots(ctx context.Context, userID, category string) ([]models.Spot, error)
	// ListAllGeotaggedSpots returns every spot of every user that has coordinates
	ListAllGeotaggedSpots(ctx context.Context) ([]models.Spot, error)
	// Hotspots aggregates spots of all users around a point
	Hotspots(ctx context.Context, lat, lng float64, category string) ([]models.Hotspot, error)
}

// ProductStore keeps tracked products and their price history
type ProductStore interface {
	// UpsertProduct inserts or updates the product identified by user and URL
	UpsertProduct(ctx context.Context, p models.Product) (models.Product, error)
	AppendPriceHistory(ctx context.Context, productID int64, price int) error
	// ActiveProducts returns every active product of every user
	ActiveProducts(ctx context.Context) ([]models.Product, error)
	// ListProducts returns the active products of one user
	ListProducts(ctx context.Context, userID string) ([]models.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
	// PriceHistory returns the latest observations, newest first
	PriceHistory(ctx context.Context, productID int64, limit int) ([]models.PriceHistory, error)
}

// StateStore remembers the search intent of each user
type StateStore interface {
	// GetUserState returns models.DefaultUserState when nothing is stored
	GetUserState(ctx context.Context, userID string) (models.UserState, error)
	SetUserState(ctx context.Context, st models.UserState) error
}

// Store is the full persistence surface
type Store interface {
	SpotStore
	ProductStore
	StateStore
	Close() error
}
