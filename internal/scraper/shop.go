package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// shopScraper holds the page layout of one shop; the extraction logic is
// shared and runs the price strategies in the configured order.
type shopScraper struct {
	platform       string
	hosts          []string
	defaultTitle   string
	priceSelectors []string
	titleSelectors []string
	titleSeparator string
	order          []string
}

func (s *shopScraper) Platform() string {
	return s.platform
}

func (s *shopScraper) CanHandle(url string) bool {
	lower := strings.ToLower(url)
	for _, host := range s.hosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// Parse extracts price and title. A missing price returns ErrNoPrice along
// with the title found so far.
func (s *shopScraper) Parse(doc *goquery.Document, raw string) (Result, error) {
	res := Result{Platform: s.platform, Title: s.title(doc)}

	order := s.order
	if len(order) == 0 {
		order = DefaultStrategyOrder
	}
	for _, name := range order {
		var (
			price int
			ok    bool
		)
		switch name {
		case StrategyJSONLD:
			price, ok = jsonLDPrice(doc)
		case StrategyMeta:
			price, ok = metaPrice(doc)
		case StrategySelectors:
			price, ok = selectorPrice(doc, s.priceSelectors)
		case StrategyRegex:
			price, ok = regexPrice(raw)
		}
		if ok {
			res.Price = price
			res.Strategy = name
			return res, nil
		}
	}
	return res, ErrNoPrice
}

// title tries JSON-LD, og:title, shop selectors and finally <title>
func (s *shopScraper) title(doc *goquery.Document) string {
	if ld := findProductLD(doc); ld.Name != "" {
		return strings.TrimSpace(ld.Name)
	}
	if og := strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", "")); og != "" {
		return s.stripSuffix(og)
	}
	for _, sel := range s.titleSelectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return s.stripSuffix(t)
	}
	return s.defaultTitle
}

func (s *shopScraper) stripSuffix(title string) string {
	if s.titleSeparator == "" {
		return title
	}
	before, _, _ := strings.Cut(title, s.titleSeparator)
	if before = strings.TrimSpace(before); before != "" {
		return before
	}
	return title
}
