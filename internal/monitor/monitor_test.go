package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"shunshun-bot/internal/line/linetest"
	"shunshun-bot/internal/models"
	"shunshun-bot/internal/scraper"
	"shunshun-bot/internal/store"
)

type fakeLookup map[string]scraper.Result

func (f fakeLookup) Lookup(_ context.Context, url string) (scraper.Result, error) {
	res, ok := f[url]
	if !ok {
		return scraper.Result{URL: url}, errors.New("timeout")
	}
	if res.Price == 0 {
		return res, scraper.ErrNoPrice
	}
	return res, nil
}

type fakeAlerter struct {
	texts []string
}

func (f *fakeAlerter) Notify(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func TestCheckAll(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	add := func(url string, price int) models.Product {
		p, err := st.UpsertProduct(ctx, models.Product{UserID: "U1", OriginalURL: url, ProductName: "商品", CurrentPrice: price, IsActive: true})
		require.NoError(t, err)
		return p
	}
	dropped := add("https://momo.dm/drop", 1000)
	same := add("https://momo.dm/same", 500)
	gone := add("https://momo.dm/gone", 300)
	add("https://momo.dm/down", 200)

	lookup := fakeLookup{
		"https://momo.dm/drop": {URL: "https://momo.dm/drop", Title: "降價耳機", Price: 850},
		"https://momo.dm/same": {URL: "https://momo.dm/same", Price: 500},
		"https://momo.dm/gone": {URL: "https://momo.dm/gone"},
	}
	rec := &linetest.Recorder{}
	alerts := &fakeAlerter{}
	m := New(st, lookup, rec, alerts, 0)
	m.Delay = 0

	sum := m.CheckAll(ctx)
	require.Equal(t, Summary{Checked: 4, Drops: 1, Deactivated: 1, Failed: 1}, sum)

	// owner and telegram chat hear about the drop
	sent := rec.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "push", sent[0].Kind)
	require.Equal(t, "U1", sent[0].Target)
	require.Contains(t, rec.Texts()[0], "$1,000 → $850")
	require.Len(t, alerts.texts, 1)

	history, err := st.PriceHistory(ctx, dropped.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 850, history[0].Price)

	history, err = st.PriceHistory(ctx, same.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	active, err := st.ActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	for _, p := range active {
		require.NotEqual(t, gone.ID, p.ID)
		if p.ID == dropped.ID {
			require.Equal(t, "降價耳機", p.ProductName)
		}
	}
}

func TestCheckProductFirstPriceIsNotADrop(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	p, err := st.UpsertProduct(ctx, models.Product{UserID: "U1", OriginalURL: "https://momo.dm/new", IsActive: true})
	require.NoError(t, err)

	rec := &linetest.Recorder{}
	m := New(st, fakeLookup{"https://momo.dm/new": {Price: 100}}, rec, nil, 0)
	res, err := m.CheckProduct(ctx, p)
	require.NoError(t, err)
	require.False(t, res.Dropped)
	require.Equal(t, 100, res.Product.CurrentPrice)
	require.Empty(t, rec.Sent())
}

func TestStartStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := New(store.NewMemory(), fakeLookup{}, &linetest.Recorder{}, nil, 1)
	m.Start(ctx)
}
