package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/models"
)

// Memory keeps everything in process memory. It backs dry runs and tests.
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	spots    []models.Spot
	products []models.Product
	history  []models.PriceHistory
	states   map[string]models.UserState
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{states: map[string]models.UserState{}}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// Close implements Store
func (m *Memory) Close() error {
	return nil
}

// FindSpotByName implements SpotStore
func (m *Memory) FindSpotByName(_ context.Context, userID, name string) (*models.Spot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.spots {
		if s.UserID == userID && s.LocationName == name {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// SaveSpot implements SpotStore
func (m *Memory) SaveSpot(_ context.Context, s models.Spot) (models.Spot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.spots {
		if existing.UserID == s.UserID && existing.LocationName == s.LocationName {
			s.ID = existing.ID
			s.CreatedAt = existing.CreatedAt
			m.spots[i] = s
			return s, false, nil
		}
	}
	s.ID = m.id()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.spots = append(m.spots, s)
	return s, true, nil
}

// UpdateSpot implements SpotStore
func (m *Memory) UpdateSpot(_ context.Context, s models.Spot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.spots {
		if existing.ID == s.ID {
			s.UserID = existing.UserID
			s.CreatedAt = existing.CreatedAt
			m.spots[i] = s
			return nil
		}
	}
	return ErrNotFound
}

// ListSpots implements SpotStore
func (m *Memory) ListSpots(_ context.Context, userID, category string) ([]models.Spot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Spot
	for i := len(m.spots) - 1; i >= 0; i-- {
		s := m.spots[i]
		if s.UserID == userID && (category == "" || s.Category == category) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListAllGeotaggedSpots implements SpotStore
func (m *Memory) ListAllGeotaggedSpots(_ context.Context) ([]models.Spot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Spot
	for _, s := range m.spots {
		if s.HasCoordinates() {
			out = append(out, s)
		}
	}
	return out, nil
}

// Hotspots groups geotagged spots by name within HotspotRadiusKm, most
// popular first.
func (m *Memory) Hotspots(ctx context.Context, lat, lng float64, category string) ([]models.Hotspot, error) {
	spots, _ := m.ListAllGeotaggedSpots(ctx)
	center := extract.LatLng{Lat: lat, Lng: lng}

	type group struct {
		hotspot models.Hotspot
		users   map[string]bool
		dist    float64
	}
	groups := map[string]*group{}
	var order []string
	for _, s := range spots {
		if category != "" && s.Category != category {
			continue
		}
		d := extract.Distance(center, extract.LatLng{Lat: s.Latitude, Lng: s.Longitude})
		if d > HotspotRadiusKm {
			continue
		}
		g, ok := groups[s.LocationName]
		if !ok {
			g = &group{
				hotspot: models.Hotspot{Name: s.LocationName, GoogleURL: s.URL, Category: s.Category, Latitude: s.Latitude, Longitude: s.Longitude},
				users:   map[string]bool{},
				dist:    d,
			}
			groups[s.LocationName] = g
			order = append(order, s.LocationName)
		}
		g.users[s.UserID] = true
	}

	out := make([]models.Hotspot, 0, len(order))
	dist := map[string]float64{}
	for _, name := range order {
		g := groups[name]
		g.hotspot.Popularity = len(g.users)
		dist[name] = g.dist
		out = append(out, g.hotspot)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		return dist[out[i].Name] < dist[out[j].Name]
	})
	return out, nil
}

// UpsertProduct implements ProductStore
func (m *Memory) UpsertProduct(_ context.Context, p models.Product) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	for i, existing := range m.products {
		if existing.UserID == p.UserID && existing.OriginalURL == p.OriginalURL {
			p.ID = existing.ID
			m.products[i] = p
			return p, nil
		}
	}
	p.ID = m.id()
	m.products = append(m.products, p)
	return p, nil
}

// AppendPriceHistory implements ProductStore
func (m *Memory) AppendPriceHistory(_ context.Context, productID int64, price int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, models.PriceHistory{ID: m.id(), ProductID: productID, Price: price, RecordedAt: time.Now().UTC()})
	return nil
}

// ActiveProducts implements ProductStore
func (m *Memory) ActiveProducts(_ context.Context) ([]models.Product, error) {
	return m.filterProducts(func(p models.Product) bool { return p.IsActive }), nil
}

// ListProducts implements ProductStore
func (m *Memory) ListProducts(_ context.Context, userID string) ([]models.Product, error) {
	return m.filterProducts(func(p models.Product) bool { return p.IsActive && p.UserID == userID }), nil
}

func (m *Memory) filterProducts(keep func(models.Product) bool) []models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// DeactivateProduct implements ProductStore
func (m *Memory) DeactivateProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

// PriceHistory implements ProductStore
func (m *Memory) PriceHistory(_ context.Context, productID int64, limit int) ([]models.PriceHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PriceHistory
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].ProductID == productID {
			out = append(out, m.history[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetUserState implements StateStore
func (m *Memory) GetUserState(_ context.Context, userID string) (models.UserState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[userID]; ok {
		return st, nil
	}
	return models.DefaultUserState(userID), nil
}

// SetUserState implements StateStore
func (m *Memory) SetUserState(_ context.Context, st models.UserState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	m.states[st.UserID] = st
	return nil
}
