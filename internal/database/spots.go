package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/models"
	"shunshun-bot/internal/store"
)

const spotColumns = "id, user_id, location_name, google_map_url, address, latitude, longitude, category, created_at"

func scanSpot(row scanner) (models.Spot, error) {
	var s models.Spot
	var url, address sql.NullString
	var createdAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.LocationName, &url, &address, &s.Latitude, &s.Longitude, &s.Category, &createdAt)
	if err != nil {
		return s, err
	}
	s.URL = url.String
	s.Address = address.String
	if createdAt.Valid {
		s.CreatedAt = createdAt.Time
	}
	return s, nil
}

func scanSpots(rows *sql.Rows) ([]models.Spot, error) {
	defer rows.Close()
	var spots []models.Spot
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

// FindSpotByName implements store.SpotStore
func (db *DB) FindSpotByName(ctx context.Context, userID, name string) (*models.Spot, error) {
	s, err := scanSpot(db.queryRow(ctx,
		"SELECT "+spotColumns+" FROM map_spots WHERE user_id = ? AND location_name = ? ORDER BY id LIMIT 1",
		userID, name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSpot implements store.SpotStore
func (db *DB) SaveSpot(ctx context.Context, s models.Spot) (models.Spot, bool, error) {
	existing, err := db.FindSpotByName(ctx, s.UserID, s.LocationName)
	switch {
	case err == nil:
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		if err := db.UpdateSpot(ctx, s); err != nil {
			return s, false, err
		}
		return s, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return s, false, err
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	err = db.queryRow(ctx,
		"INSERT INTO map_spots (user_id, location_name, google_map_url, address, latitude, longitude, category, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id",
		s.UserID, s.LocationName, s.URL, s.Address, s.Latitude, s.Longitude, s.Category, s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return s, false, fmt.Errorf("insert spot: %w", err)
	}
	return s, true, nil
}

// UpdateSpot implements store.SpotStore
func (db *DB) UpdateSpot(ctx context.Context, s models.Spot) error {
	res, err := db.exec(ctx,
		"UPDATE map_spots SET location_name = ?, google_map_url = ?, address = ?, latitude = ?, longitude = ?, category = ? WHERE id = ?",
		s.LocationName, s.URL, s.Address, s.Latitude, s.Longitude, s.Category, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update spot %d: %w", s.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListSpots implements store.SpotStore
func (db *DB) ListSpots(ctx context.Context, userID, category string) ([]models.Spot, error) {
	q := "SELECT " + spotColumns + " FROM map_spots WHERE user_id = ?"
	args := []any{userID}
	if category != "" {
		q += " AND category = ?"
		args = append(args, category)
	}
	rows, err := db.query(ctx, q+" ORDER BY created_at DESC, id DESC", args...)
	if err != nil {
		return nil, err
	}
	return scanSpots(rows)
}

// ListAllGeotaggedSpots implements store.SpotStore
func (db *DB) ListAllGeotaggedSpots(ctx context.Context) ([]models.Spot, error) {
	rows, err := db.query(ctx,
		"SELECT "+spotColumns+" FROM map_spots WHERE latitude <> 0 OR longitude <> 0 ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	return scanSpots(rows)
}

// Hotspots groups the spots of all users by name inside a bounding box
// around the point, then keeps those within store.HotspotRadiusKm. The most
// popular (most distinct users) come first, ties broken by distance.
func (db *DB) Hotspots(ctx context.Context, lat, lng float64, category string) ([]models.Hotspot, error) {
	dLat := store.HotspotRadiusKm / 111.0
	dLng := store.HotspotRadiusKm / (111.0 * math.Max(math.Cos(lat*math.Pi/180), 0.01))

	q := `SELECT location_name, MIN(google_map_url), MIN(category), AVG(latitude), AVG(longitude), COUNT(DISTINCT user_id)
		FROM map_spots
		WHERE (latitude <> 0 OR longitude <> 0)
		AND latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`
	args := []any{lat - dLat, lat + dLat, lng - dLng, lng + dLng}
	if category != "" {
		q += " AND category = ?"
		args = append(args, category)
	}
	q += " GROUP BY location_name"

	rows, err := db.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query hotspots: %w", err)
	}
	defer rows.Close()

	center := extract.LatLng{Lat: lat, Lng: lng}
	var hotspots []models.Hotspot
	dist := map[string]float64{}
	for rows.Next() {
		var h models.Hotspot
		var url sql.NullString
		if err := rows.Scan(&h.Name, &url, &h.Category, &h.Latitude, &h.Longitude, &h.Popularity); err != nil {
			return nil, err
		}
		h.GoogleURL = url.String
		d := extract.Distance(center, extract.LatLng{Lat: h.Latitude, Lng: h.Longitude})
		if d > store.HotspotRadiusKm {
			continue
		}
		dist[h.Name] = d
		hotspots = append(hotspots, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		if hotspots[i].Popularity != hotspots[j].Popularity {
			return hotspots[i].Popularity > hotspots[j].Popularity
		}
		return dist[hotspots[i].Name] < dist[hotspots[j].Name]
	})
	return hotspots, nil
}
