package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/geocode"
	"shunshun-bot/internal/models"
)

// Keywords holds the title keyword lists per category
type Keywords struct {
	Food   []string `json:"food"`
	Travel []string `json:"travel"`
	Stay   []string `json:"stay"`
}

// DefaultKeywords are the lists the bot ships with
func DefaultKeywords() Keywords {
	return Keywords{
		Food:   []string{"餐廳", "咖啡", "Coffee", "Cafe", "麵", "飯", "食", "味", "餐酒館", "Bar", "甜點", "火鍋", "料理", "Bistro", "早午餐", "牛排"},
		Travel: []string{"車站", "公園", "山", "海", "寺", "廟", "博物館", "步道", "農場", "樂園", "展覽", "View", "Hotel", "民宿", "景點"},
		Stay:   []string{"旅館", "酒店", "住宿", "Hostel", "Inn", "Motel"},
	}
}

// Match returns the category of the first list with a keyword contained in
// title, checking food, then travel, then stay. Latin keywords ignore case.
func (k Keywords) Match(title string) (string, bool) {
	if strings.TrimSpace(title) == "" {
		return "", false
	}
	lower := strings.ToLower(title)
	lists := []struct {
		category string
		words    []string
	}{
		{models.CategoryFood, k.Food},
		{models.CategoryTravel, k.Travel},
		{models.CategoryStay, k.Stay},
	}
	for _, l := range lists {
		for _, kw := range l.words {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return l.category, true
			}
		}
	}
	return "", false
}

// Classifier strategy names
const (
	StrategyKeywords = "keywords"
	StrategyGeocode  = "geocode"
	StrategyDefault  = "default"
)

// DefaultOrder is the strategy order used when Classifier.Order is empty
var DefaultOrder = []string{StrategyKeywords, StrategyGeocode}

// Result is the outcome of a classification
type Result struct {
	Category string
	Strategy string
	// PlaceName is the name reverse geocoding found, used to back-fill untitled spots
	PlaceName string
}

// Classifier buckets a place into a category from its title, falling back to
// reverse geocoding its coordinates.
type Classifier struct {
	Keywords Keywords
	Geocoder geocode.Geocoder
	Order    []string
}

// New creates a classifier; geocoder may be nil
func New(keywords Keywords, geocoder geocode.Geocoder, order []string) *Classifier {
	return &Classifier{Keywords: keywords, Geocoder: geocoder, Order: order}
}

// ValidateOrder reports unknown strategy names
func ValidateOrder(order []string) error {
	for _, name := range order {
		if name != StrategyKeywords && name != StrategyGeocode {
			return fmt.Errorf("unknown classifier strategy %q", name)
		}
	}
	return nil
}

// Classify never fails: errors from the geocoder are logged and the result
// falls through to 其它.
func (c *Classifier) Classify(ctx context.Context, title string, coords *extract.LatLng) Result {
	order := c.Order
	if len(order) == 0 {
		order = DefaultOrder
	}

	var placeName string
	for _, name := range order {
		switch name {
		case StrategyKeywords:
			if cat, ok := c.Keywords.Match(title); ok {
				return Result{Category: cat, Strategy: name}
			}
		case StrategyGeocode:
			if c.Geocoder == nil || coords == nil || !coords.Valid() {
				continue
			}
			place, err := c.Geocoder.Reverse(ctx, *coords)
			if err != nil {
				slog.WarnContext(ctx, "reverse geocoding failed", "coords", coords.String(), "err", err)
				continue
			}
			placeName = place.Name
			if place.Category != "" {
				return Result{Category: place.Category, Strategy: name, PlaceName: place.Name}
			}
			if cat, ok := c.Keywords.Match(place.Name); ok {
				return Result{Category: cat, Strategy: name, PlaceName: place.Name}
			}
		}
	}
	return Result{Category: models.CategoryOther, Strategy: StrategyDefault, PlaceName: placeName}
}
