package scraper

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoPrice is returned when no strategy finds a price on the page
var ErrNoPrice = errors.New("price not found on page")

// Result is what a scraper extracted from a product page
type Result struct {
	URL      string
	Platform string
	Title    string
	Price    int
	// Strategy names the extraction strategy that produced the price
	Strategy string
}

// Scraper defines the interface for the scrapers of each shop
type Scraper interface {
	Platform() string
	CanHandle(url string) bool
	Parse(doc *goquery.Document, raw string) (Result, error)
}

// Registry keeps every available scraper
type Registry struct {
	scrapers []Scraper
	fallback Scraper
}

// NewRegistry creates the registry of supported shops. order sets the price
// strategy order for every shop, DefaultStrategyOrder when empty.
func NewRegistry(order []string) *Registry {
	momo := NewMomoScraper(order)
	return &Registry{
		scrapers: []Scraper{
			momo,
			NewPChomeScraper(order),
		},
		fallback: momo,
	}
}

// FindScraper finds the scraper for a URL, nil when no shop matches
func (r *Registry) FindScraper(url string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(url) {
			return scraper
		}
	}
	return nil
}

// Fallback is the scraper used for unknown shops; Momo's page layout is the
// most generic of the supported ones.
func (r *Registry) Fallback() Scraper {
	return r.fallback
}

// IsShopURL reports whether text links to a supported shop
func (r *Registry) IsShopURL(text string) bool {
	return r.FindScraper(text) != nil
}

// CleanURL drops the fragment and trailing punctuation that chat apps glue to links
func CleanURL(url string) string {
	url, _, _ = strings.Cut(url, "#")
	return strings.TrimRight(url, ".,;!?)）」】。，")
}
