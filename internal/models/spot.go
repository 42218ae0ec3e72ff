package models

import (
	"strings"
	"time"
)

// PendingPrefix marks spots saved without usable coordinates
const PendingPrefix = "[待處理] "

// Spot is a saved map location
type Spot struct {
	ID           int64     `json:"id,omitempty"`
	UserID       string    `json:"user_id"`
	LocationName string    `json:"location_name"`
	URL          string    `json:"google_map_url"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasCoordinates reports whether the spot was geotagged
func (s Spot) HasCoordinates() bool {
	return s.Latitude != 0 || s.Longitude != 0
}

// IsPending reports whether the spot is a placeholder waiting for a backfill
func (s Spot) IsPending() bool {
	return strings.HasPrefix(s.LocationName, PendingPrefix)
}

// Hotspot is a location aggregated across users, returned by the get_hotspots procedure
type Hotspot struct {
	Name       string  `json:"name"`
	GoogleURL  string  `json:"google_url"`
	Category   string  `json:"category"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Popularity int     `json:"popularity"`
	AdPriority int     `json:"ad_priority"`
}
