// Package supabase implements store.Store over Supabase's PostgREST API.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/store"
)

// Client talks to the REST endpoint of a Supabase project
type Client struct {
	client *resty.Client
}

var _ store.Store = (*Client)(nil)

// New creates a client for the project at baseURL, authenticated with the
// service role key.
func New(baseURL, key string) (*Client, error) {
	if baseURL == "" || key == "" {
		return nil, errors.New("supabase url and service role key are required")
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/rest/v1").
		SetHeader("apikey", key).
		SetAuthToken(key).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{client: client}, nil
}

// Close implements store.Store
func (c *Client) Close() error {
	return nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.client.R().SetContext(ctx)
}

func check(res *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("supabase %s: %w", op, err)
	}
	if res.IsError() {
		return fmt.Errorf("supabase %s: %s: %s", op, res.Status(), extract.Truncate(strings.TrimSpace(res.String()), 200))
	}
	return nil
}

func eq(v any) string {
	return fmt.Sprintf("eq.%v", v)
}

// timestamp accepts both timestamptz and timestamp columns
type timestamp time.Time

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = timestamp(v)
			return nil
		}
	}
	return fmt.Errorf("unknown timestamp format %q", s)
}

func (t timestamp) Time() time.Time {
	return time.Time(t)
}
