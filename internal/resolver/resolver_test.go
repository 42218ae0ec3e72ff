package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/maps/place/Cafe/@25.04,121.51,17z", http.StatusFound)
	})
	mux.HandleFunc("/nohead", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		http.Redirect(w, r, "/maps/place/Bar/@1.5,2.5,17z", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/maps/place/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("<html><title>Cafe - Google 地圖</title></html>"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPResolver(t *testing.T) {
	srv := newTestServer(t)
	r := NewHTTPResolver(HTTPOptions{PlainTransport: true})
	ctx := context.Background()

	t.Run("resolve follows redirects", func(t *testing.T) {
		final, err := r.Resolve(ctx, srv.URL+"/short")
		require.NoError(t, err)
		require.Equal(t, srv.URL+"/maps/place/Cafe/@25.04,121.51,17z", final)
	})

	t.Run("resolve falls back to get", func(t *testing.T) {
		final, err := r.Resolve(ctx, srv.URL+"/nohead")
		require.NoError(t, err)
		require.Equal(t, srv.URL+"/maps/place/Bar/@1.5,2.5,17z", final)
	})

	t.Run("resolve keeps input on failure", func(t *testing.T) {
		final, err := r.Resolve(ctx, srv.URL+"/gone")
		require.Error(t, err)
		require.Equal(t, srv.URL+"/gone", final)
	})

	t.Run("fetch returns body", func(t *testing.T) {
		page, err := r.Fetch(ctx, srv.URL+"/short")
		require.NoError(t, err)
		require.Contains(t, page.Body, "Cafe - Google 地圖")
	})
}

type stubFetcher struct {
	page Page
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) (Page, error) {
	return s.page, s.err
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	page, err := Chain{
		stubFetcher{err: errors.New("no chrome")},
		stubFetcher{page: Page{URL: "u", Body: "<html></html>"}},
	}.Fetch(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, "<html></html>", page.Body)

	_, err = Chain{stubFetcher{}, stubFetcher{err: errors.New("boom")}}.Fetch(ctx, "u")
	require.ErrorContains(t, err, "boom")
	require.ErrorContains(t, err, "empty body")

	_, err = Chain{}.Fetch(ctx, "u")
	require.Error(t, err)
}
