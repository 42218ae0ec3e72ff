package resolver

import (
	"context"
	"errors"
	"log/slog"
)

// UserAgent is sent by every fetcher; shops serve stripped pages to unknown agents
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Page is a fetched document after redirects
type Page struct {
	URL  string
	Body string
}

// Fetcher loads a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Chain tries each fetcher in order and returns the first page with a body
type Chain []Fetcher

// Fetch implements Fetcher
func (c Chain) Fetch(ctx context.Context, url string) (Page, error) {
	var errs []error
	for _, f := range c {
		if f == nil {
			continue
		}
		page, err := f.Fetch(ctx, url)
		if err == nil && page.Body != "" {
			return page, nil
		}
		if err == nil {
			err = errors.New("empty body")
		}
		slog.WarnContext(ctx, "fetcher failed, trying next", "url", url, "err", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Page{}, errors.New("no fetcher configured")
	}
	return Page{}, errors.Join(errs...)
}
