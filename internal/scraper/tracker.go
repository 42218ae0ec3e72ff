package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/resolver"
)

// Tracker turns a shared chat message into a product price
type Tracker struct {
	registry *Registry
	fetcher  resolver.Fetcher
}

// NewTracker creates a tracker that loads pages through fetcher
func NewTracker(registry *Registry, fetcher resolver.Fetcher) *Tracker {
	return &Tracker{registry: registry, fetcher: fetcher}
}

// Registry returns the shops the tracker knows
func (t *Tracker) Registry() *Registry {
	return t.registry
}

// Lookup cleans the message, loads the product page and extracts price and
// title. The returned Result always carries the clean URL, even on error.
func (t *Tracker) Lookup(ctx context.Context, rawMessage string) (Result, error) {
	url := CleanURL(extract.ExtractURL(extract.Normalize(rawMessage)))
	if url == "" {
		return Result{}, extract.ErrNoURL
	}
	if url != rawMessage {
		slog.DebugContext(ctx, "cleaned product url", "url", url)
	}

	s := t.registry.FindScraper(url)
	if s == nil {
		slog.InfoContext(ctx, "unknown shop, using fallback scraper", "url", url, "platform", t.registry.Fallback().Platform())
		s = t.registry.Fallback()
	}

	page, err := t.fetcher.Fetch(ctx, url)
	if err != nil {
		return Result{URL: url, Platform: s.Platform()}, fmt.Errorf("load product page: %w", err)
	}

	// a short link may land on the other shop
	if page.URL != "" && !s.CanHandle(page.URL) {
		if other := t.registry.FindScraper(page.URL); other != nil {
			s = other
		}
	}

	res, err := ParseHTML(s, page.Body)
	res.URL = url
	if err != nil {
		return res, err
	}
	slog.InfoContext(ctx, "product price found", "platform", res.Platform, "price", res.Price, "strategy", res.Strategy, "title", res.Title)
	return res, nil
}

// ParseHTML runs s over a raw HTML document
func ParseHTML(s Scraper, body string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Result{Platform: s.Platform()}, fmt.Errorf("parse html: %w", err)
	}
	return s.Parse(doc, body)
}
