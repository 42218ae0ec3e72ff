package scraper

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Price strategy names, in default order
const (
	StrategyJSONLD    = "jsonld"
	StrategyMeta      = "meta"
	StrategySelectors = "selectors"
	StrategyRegex     = "regex"
)

// DefaultStrategyOrder is structured data first, brute force last
var DefaultStrategyOrder = []string{StrategyJSONLD, StrategyMeta, StrategySelectors, StrategyRegex}

// ValidateStrategyOrder reports unknown strategy names
func ValidateStrategyOrder(order []string) error {
	for _, name := range order {
		switch name {
		case StrategyJSONLD, StrategyMeta, StrategySelectors, StrategyRegex:
		default:
			return fmt.Errorf("unknown price strategy %q", name)
		}
	}
	return nil
}

var (
	numberRe     = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	rawPriceRe   = regexp.MustCompile(`"(?:price|salePrice|Price|lowPrice)"\s*:\s*"?(\d[\d,]*(?:\.\d+)?)"?`)
	metaPriceSel = []string{
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
		`meta[itemprop="price"]`,
	}
)

// CleanPrice reads the first number in text ("$1,299元" -> 1299). Decimals
// are truncated since both shops price in whole NT dollars.
func CleanPrice(text string) (int, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	m = strings.ReplaceAll(m, ",", "")
	if i := strings.IndexByte(m, '.'); i >= 0 {
		m = m[:i]
	}
	v, err := strconv.Atoi(m)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// productLD is the part of a schema.org Product we care about
type productLD struct {
	Name   string
	Price  int
	Exists bool
}

// findProductLD returns the first schema.org Product of the page's JSON-LD blocks
func findProductLD(doc *goquery.Document) productLD {
	var found productLD
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			return true
		}
		if obj := productObject(data); obj != nil {
			found.Exists = true
			found.Name, _ = obj["name"].(string)
			found.Price = offerPrice(obj["offers"])
			return false
		}
		return true
	})
	return found
}

func productObject(data any) map[string]any {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			if obj := productObject(item); obj != nil {
				return obj
			}
		}
	case map[string]any:
		if isType(v["@type"], "Product") {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return productObject(graph)
		}
	}
	return nil
}

func isType(t any, want string) bool {
	switch v := t.(type) {
	case string:
		return v == want
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// offerPrice reads offers as an object or a list of objects
func offerPrice(offers any) int {
	switch v := offers.(type) {
	case []any:
		for _, item := range v {
			if p := offerPrice(item); p > 0 {
				return p
			}
		}
	case map[string]any:
		for _, key := range []string{"price", "lowPrice"} {
			if p, ok := priceValue(v[key]); ok {
				return p
			}
		}
	}
	return 0
}

func priceValue(v any) (int, bool) {
	switch p := v.(type) {
	case float64:
		if p > 0 {
			return int(p), true
		}
	case string:
		return CleanPrice(p)
	}
	return 0, false
}

func jsonLDPrice(doc *goquery.Document) (int, bool) {
	ld := findProductLD(doc)
	return ld.Price, ld.Price > 0
}

func metaPrice(doc *goquery.Document) (int, bool) {
	for _, sel := range metaPriceSel {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if p, ok := CleanPrice(content); ok {
				return p, true
			}
		}
	}
	return 0, false
}

// selectorPrice walks selectors in order. When a selector matches several
// elements the lowest price wins, it is usually the discounted one.
func selectorPrice(doc *goquery.Document, selectors []string) (int, bool) {
	for _, sel := range selectors {
		lowest := 0
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if p, ok := CleanPrice(strings.TrimSpace(s.Text())); ok && (lowest == 0 || p < lowest) {
				lowest = p
			}
		})
		if lowest > 0 {
			return lowest, true
		}
	}
	return 0, false
}

func regexPrice(raw string) (int, bool) {
	for _, m := range rawPriceRe.FindAllStringSubmatch(raw, -1) {
		if p, ok := CleanPrice(m[1]); ok {
			return p, true
		}
	}
	return 0, false
}
