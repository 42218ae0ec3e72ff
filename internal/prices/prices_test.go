package prices

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/line/linetest"
	"shunshun-bot/internal/scraper"
	"shunshun-bot/internal/store"
)

type fakeLookup struct {
	res scraper.Result
	err error
}

func (f fakeLookup) Lookup(context.Context, string) (scraper.Result, error) {
	return f.res, f.err
}

func TestTrackTask(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	rec := &linetest.Recorder{}
	lookup := fakeLookup{res: scraper.Result{
		URL:      "https://24h.pchome.com.tw/prod/DYAJ1",
		Platform: "pchome",
		Title:    "Sony WH-1000XM5",
		Price:    10490,
	}}

	p, err := New(lookup, st, rec).TrackTask(ctx, "看看 https://24h.pchome.com.tw/prod/DYAJ1", "U1", "r1")
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	require.True(t, p.IsActive)

	history, err := st.PriceHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 10490, history[0].Price)

	msg := rec.Last()
	require.Equal(t, "flex", msg["type"])
	require.Equal(t, "💰 Sony WH-1000XM5 $10,490", msg["altText"])

	// tracking the same link again keeps one product and extends the history
	lookup.res.Price = 9990
	again, err := New(lookup, st, rec).TrackTask(ctx, "https://24h.pchome.com.tw/prod/DYAJ1", "U1", "r2")
	require.NoError(t, err)
	require.Equal(t, p.ID, again.ID)
	history, err = st.PriceHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	require.NoError(t, New(lookup, st, rec).ListTask(ctx, "U1", "r3"))
	require.Contains(t, rec.Texts()[0], "📋 追蹤清單")
	require.Contains(t, rec.Texts()[0], "$9,990")
}

func TestTrackTaskFailures(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	rec := &linetest.Recorder{}

	_, err := New(fakeLookup{err: extract.ErrNoURL}, st, rec).TrackTask(ctx, "hello", "U1", "r1")
	require.ErrorIs(t, err, extract.ErrNoURL)
	require.Empty(t, rec.Sent())

	_, err = New(fakeLookup{res: scraper.Result{URL: "https://momo.dm/x"}, err: scraper.ErrNoPrice}, st, rec).TrackTask(ctx, "https://momo.dm/x", "U1", "r1")
	require.ErrorIs(t, err, scraper.ErrNoPrice)
	require.Equal(t, []string{msgNoPrice}, rec.Texts())

	_, err = New(fakeLookup{err: errors.New("timeout")}, st, rec).TrackTask(ctx, "https://momo.dm/x", "U1", "r1")
	require.Error(t, err)
	require.Equal(t, msgLoadError, rec.Texts()[1])

	products, err := st.ActiveProducts(ctx)
	require.NoError(t, err)
	require.Empty(t, products)
}
