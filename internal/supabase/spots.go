package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shunshun-bot/internal/models"
	"shunshun-bot/internal/store"
)

type spotRow struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	LocationName string    `json:"location_name"`
	URL          string    `json:"google_map_url"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Category     string    `json:"category"`
	CreatedAt    timestamp `json:"created_at"`
}

func (r spotRow) model() models.Spot {
	return models.Spot{
		ID:           r.ID,
		UserID:       r.UserID,
		LocationName: r.LocationName,
		URL:          r.URL,
		Address:      r.Address,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Category:     r.Category,
		CreatedAt:    r.CreatedAt.Time(),
	}
}

func spotModels(rows []spotRow) []models.Spot {
	spots := make([]models.Spot, 0, len(rows))
	for _, r := range rows {
		spots = append(spots, r.model())
	}
	return spots
}

// pointWKT fills the PostGIS geometry column the hotspot procedure searches on
func pointWKT(lat, lng float64) string {
	return fmt.Sprintf("POINT(%v %v)", lng, lat)
}

func spotFields(s models.Spot) map[string]any {
	return map[string]any{
		"location_name":  s.LocationName,
		"google_map_url": s.URL,
		"address":        s.Address,
		"latitude":       s.Latitude,
		"longitude":      s.Longitude,
		"category":       s.Category,
	}
}

// FindSpotByName implements store.SpotStore
func (c *Client) FindSpotByName(ctx context.Context, userID, name string) (*models.Spot, error) {
	var rows []spotRow
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select":        "*",
			"user_id":       eq(userID),
			"location_name": eq(name),
			"order":         "id.asc",
			"limit":         "1",
		}).
		SetResult(&rows).
		Get("/map_spots")
	if err := check(res, err, "find spot"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	s := rows[0].model()
	return &s, nil
}

// SaveSpot implements store.SpotStore
func (c *Client) SaveSpot(ctx context.Context, s models.Spot) (models.Spot, bool, error) {
	existing, err := c.FindSpotByName(ctx, s.UserID, s.LocationName)
	if err == nil {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		return s, false, c.UpdateSpot(ctx, s)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return s, false, err
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	body := spotFields(s)
	body["user_id"] = s.UserID
	body["created_at"] = s.CreatedAt
	if s.HasCoordinates() {
		body["geom"] = pointWKT(s.Latitude, s.Longitude)
	}

	var rows []spotRow
	res, err := c.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body).
		SetResult(&rows).
		Post("/map_spots")
	if err := check(res, err, "insert spot"); err != nil {
		return s, false, err
	}
	if len(rows) > 0 {
		s.ID = rows[0].ID
	}
	return s, true, nil
}

// UpdateSpot implements store.SpotStore
func (c *Client) UpdateSpot(ctx context.Context, s models.Spot) error {
	body := spotFields(s)
	if s.HasCoordinates() {
		body["geom"] = pointWKT(s.Latitude, s.Longitude)
	}

	var rows []spotRow
	res, err := c.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", eq(s.ID)).
		SetBody(body).
		SetResult(&rows).
		Patch("/map_spots")
	if err := check(res, err, "update spot"); err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListSpots implements store.SpotStore
func (c *Client) ListSpots(ctx context.Context, userID, category string) ([]models.Spot, error) {
	params := map[string]string{
		"select":  "*",
		"user_id": eq(userID),
		"order":   "created_at.desc",
	}
	if category != "" {
		params["category"] = eq(category)
	}

	var rows []spotRow
	res, err := c.request(ctx).SetQueryParams(params).SetResult(&rows).Get("/map_spots")
	if err := check(res, err, "list spots"); err != nil {
		return nil, err
	}
	return spotModels(rows), nil
}

// ListAllGeotaggedSpots implements store.SpotStore
func (c *Client) ListAllGeotaggedSpots(ctx context.Context) ([]models.Spot, error) {
	var rows []spotRow
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select":   "*",
			"latitude": "neq.0",
			"order":    "id.asc",
		}).
		SetResult(&rows).
		Get("/map_spots")
	if err := check(res, err, "list geotagged spots"); err != nil {
		return nil, err
	}
	return spotModels(rows), nil
}

// Hotspots calls the get_hotspots procedure
func (c *Client) Hotspots(ctx context.Context, lat, lng float64, category string) ([]models.Hotspot, error) {
	params := map[string]any{"user_lat": lat, "user_lng": lng}
	if category != "" {
		params["target_category"] = category
	}

	var hotspots []models.Hotspot
	res, err := c.request(ctx).SetBody(params).SetResult(&hotspots).Post("/rpc/get_hotspots")
	if err := check(res, err, "get_hotspots"); err != nil {
		return nil, err
	}
	return hotspots, nil
}
