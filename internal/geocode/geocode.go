package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"shunshun-bot/internal/extract"
)

// ErrNoResult is returned when the provider knows nothing about a coordinate
var ErrNoResult = errors.New("geocode: no result")

// Place is what reverse geocoding tells us about a coordinate
type Place struct {
	Name     string
	Address  string
	Category string // one of the spot categories, "" when unknown
	Class    string // provider's raw classification, e.g. "amenity"
	Type     string // e.g. "restaurant"
}

// Geocoder looks up a coordinate
type Geocoder interface {
	Reverse(ctx context.Context, p extract.LatLng) (Place, error)
}

// Cached memoises another Geocoder. Public geocoders ask clients to cache.
type Cached struct {
	next  Geocoder
	cache *expirable.LRU[string, Place]
}

// NewCached wraps next with an expiring LRU cache
func NewCached(next Geocoder, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cached{
		next:  next,
		cache: expirable.NewLRU[string, Place](size, nil, ttl),
	}
}

// Reverse implements Geocoder
func (c *Cached) Reverse(ctx context.Context, p extract.LatLng) (Place, error) {
	key := fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
	if place, ok := c.cache.Get(key); ok {
		slog.DebugContext(ctx, "geocode cache hit", "key", key)
		return place, nil
	}
	place, err := c.next.Reverse(ctx, p)
	if err != nil {
		return Place{}, err
	}
	c.cache.Add(key, place)
	return place, nil
}
