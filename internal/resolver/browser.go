package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome for shops that build the
// price with JavaScript.
type BrowserFetcher struct {
	// Settle is how long to wait after navigation for scripts to fill the page
	Settle  time.Duration
	Timeout time.Duration
	// ExecPath overrides the Chrome binary lookup
	ExecPath string
}

// NewBrowserFetcher creates a fetcher with the defaults used in production
func NewBrowserFetcher() *BrowserFetcher {
	return &BrowserFetcher{
		Settle:  5 * time.Second,
		Timeout: 60 * time.Second,
	}
}

// Fetch implements Fetcher. Every call starts and stops its own browser.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))
	defer cancel()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html, location string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.Settle),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return Page{}, fmt.Errorf("render %s: %w", url, err)
	}

	slog.DebugContext(ctx, "rendered page", "url", url, "final_url", location, "bytes", len(html))
	return Page{URL: location, Body: html}, nil
}
