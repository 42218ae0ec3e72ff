package geocode

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"shunshun-bot/internal/extract"
)

const (
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent        = "shunshun-bot/1.0 (+https://github.com/shunshun-bot)"
)

// Nominatim reverse-geocodes through an OpenStreetMap Nominatim instance.
// The public instance allows about one request per second, so requests are
// throttled client-side.
type Nominatim struct {
	client *resty.Client
}

// NewNominatim creates a client. Empty arguments fall back to the public
// instance and the default user agent.
func NewNominatim(baseURL, userAgent string) *Nominatim {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultNominatimBaseURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Nominatim{client: client}
}

type nominatimReverse struct {
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	NameDetails map[string]string `json:"namedetails"`
	Error       string            `json:"error"`
}

// Reverse implements Geocoder
func (n *Nominatim) Reverse(ctx context.Context, p extract.LatLng) (Place, error) {
	var out nominatimReverse
	res, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format":          "jsonv2",
			"lat":             strconv.FormatFloat(p.Lat, 'f', -1, 64),
			"lon":             strconv.FormatFloat(p.Lng, 'f', -1, 64),
			"zoom":            "18",
			"namedetails":     "1",
			"accept-language": "zh-TW",
		}).
		SetResult(&out).
		Get("/reverse")
	if err != nil {
		return Place{}, fmt.Errorf("nominatim: %w", err)
	}
	if res.IsError() {
		return Place{}, fmt.Errorf("nominatim status: %s", res.Status())
	}
	if out.Error != "" {
		return Place{}, fmt.Errorf("%w: %s", ErrNoResult, out.Error)
	}

	name := out.Name
	if name == "" {
		name = out.NameDetails["name:zh"]
	}
	if name == "" {
		name = out.NameDetails["name"]
	}

	return Place{
		Name:     name,
		Address:  out.DisplayName,
		Category: CategoryFromOSM(out.Category, out.Type),
		Class:    out.Category,
		Type:     out.Type,
	}, nil
}
