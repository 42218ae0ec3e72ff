package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// HTTPResolver follows redirects of short links and fetches plain pages
type HTTPResolver struct {
	client *resty.Client
}

// HTTPOptions configures NewHTTPResolver
type HTTPOptions struct {
	Timeout time.Duration
	// requests per second, 0 disables the limiter
	RateLimit float64
	// skips the cloudflare transport, used against local test servers
	PlainTransport bool
}

// NewHTTPResolver creates a resolver with a browser-like client
func NewHTTPResolver(opts HTTPOptions) *HTTPResolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client := resty.New()
	if !opts.PlainTransport {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("User-Agent", UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	client.SetTimeout(opts.Timeout)

	if opts.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &HTTPResolver{client: client}
}

// Resolve returns the final URL of a (short) link. HEAD is tried first since
// map pages are large; some shorteners reject HEAD so GET is the fallback.
// On failure the input URL is returned along with the error.
func (r *HTTPResolver) Resolve(ctx context.Context, url string) (string, error) {
	res, err := r.client.R().SetContext(ctx).Head(url)
	if err == nil && res.StatusCode() < http.StatusBadRequest {
		return finalURL(res, url), nil
	}
	slog.DebugContext(ctx, "head request failed, retrying with get", "url", url, "err", err)

	page, err := r.Fetch(ctx, url)
	if err != nil {
		return url, err
	}
	return page.URL, nil
}

// Fetch implements Fetcher
func (r *HTTPResolver) Fetch(ctx context.Context, url string) (Page, error) {
	res, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	if res.IsError() {
		return Page{}, fmt.Errorf("fetch %s: status code: %d", url, res.StatusCode())
	}
	return Page{URL: finalURL(res, url), Body: res.String()}, nil
}

func finalURL(res *resty.Response, fallback string) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		return res.RawResponse.Request.URL.String()
	}
	return fallback
}
