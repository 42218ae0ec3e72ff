package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"shunshun-bot/internal/extract"
)

const DefaultGoogleBaseURL = "https://maps.googleapis.com"

// Google reverse-geocodes with the Google Geocoding API
type Google struct {
	client *resty.Client
	apiKey string
}

// NewGoogle creates a client; baseURL may be empty
func NewGoogle(baseURL, apiKey string) (*Google, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google geocoding selected but missing API key")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGoogleBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)
	return &Google{client: client, apiKey: apiKey}, nil
}

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string   `json:"formatted_address"`
		Types             []string `json:"types"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Reverse implements Geocoder
func (g *Google) Reverse(ctx context.Context, p extract.LatLng) (Place, error) {
	var out googleResponse
	res, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latlng":   p.String(),
			"key":      g.apiKey,
			"language": "zh-TW",
		}).
		SetResult(&out).
		Get("/maps/api/geocode/json")
	if err != nil {
		return Place{}, fmt.Errorf("google geocoding: %w", err)
	}
	if res.IsError() {
		return Place{}, fmt.Errorf("google geocoding status: %s", res.Status())
	}
	switch strings.ToUpper(out.Status) {
	case "OK":
	case "ZERO_RESULTS":
		return Place{}, ErrNoResult
	default:
		return Place{}, fmt.Errorf("google geocoding error: %s", out.Status)
	}
	if len(out.Results) == 0 {
		return Place{}, ErrNoResult
	}

	// Prefer the most specific result that names an establishment
	best := out.Results[0]
	for _, r := range out.Results {
		if hasAny(r.Types, "establishment", "point_of_interest") {
			best = r
			break
		}
	}

	place := Place{
		Address:  best.FormattedAddress,
		Category: CategoryFromGoogleTypes(best.Types),
		Type:     strings.Join(best.Types, ","),
	}
	if hasAny(best.Types, "establishment", "point_of_interest") && len(best.AddressComponents) > 0 {
		place.Name = best.AddressComponents[0].LongName
	}
	return place, nil
}

func hasAny(types []string, want ...string) bool {
	for _, t := range types {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}
