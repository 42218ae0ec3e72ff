package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shunshun-bot/internal/models"
)

func TestMemorySpots(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a, created, err := m.SaveSpot(ctx, models.Spot{UserID: "U1", LocationName: "鼎泰豐", Category: models.CategoryFood, Latitude: 25.0336, Longitude: 121.53})
	require.NoError(t, err)
	require.True(t, created)

	b, created, err := m.SaveSpot(ctx, models.Spot{UserID: "U1", LocationName: "鼎泰豐", Category: models.CategoryFood, Latitude: 25.0337, Longitude: 121.53})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, a.ID, b.ID)

	_, _, err = m.SaveSpot(ctx, models.Spot{UserID: "U2", LocationName: "鼎泰豐", Category: models.CategoryFood, Latitude: 25.0336, Longitude: 121.53})
	require.NoError(t, err)
	_, _, err = m.SaveSpot(ctx, models.Spot{UserID: "U2", LocationName: "太遠了", Category: models.CategoryFood, Latitude: 22.6, Longitude: 120.3})
	require.NoError(t, err)

	spots, err := m.ListSpots(ctx, "U1", "")
	require.NoError(t, err)
	require.Len(t, spots, 1)

	hotspots, err := m.Hotspots(ctx, 25.033, 121.53, models.CategoryFood)
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	require.Equal(t, 2, hotspots[0].Popularity)

	_, err = m.FindSpotByName(ctx, "U3", "鼎泰豐")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProducts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p, err := m.UpsertProduct(ctx, models.Product{UserID: "U1", OriginalURL: "https://momo.dm/a", CurrentPrice: 100, IsActive: true})
	require.NoError(t, err)
	q, err := m.UpsertProduct(ctx, models.Product{UserID: "U1", OriginalURL: "https://momo.dm/a", CurrentPrice: 90, IsActive: true})
	require.NoError(t, err)
	require.Equal(t, p.ID, q.ID)

	require.NoError(t, m.AppendPriceHistory(ctx, p.ID, 100))
	require.NoError(t, m.AppendPriceHistory(ctx, p.ID, 90))
	history, err := m.PriceHistory(ctx, p.ID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 90, history[0].Price)

	require.NoError(t, m.DeactivateProduct(ctx, p.ID))
	active, err := m.ActiveProducts(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
	require.ErrorIs(t, m.DeactivateProduct(ctx, 99), ErrNotFound)
}
