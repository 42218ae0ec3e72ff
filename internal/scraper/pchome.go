package scraper

// NewPChomeScraper creates the scraper for PChome 24h pages
func NewPChomeScraper(order []string) Scraper {
	return &shopScraper{
		platform:     "pchome",
		hosts:        []string{"pchome.com.tw"},
		defaultTitle: "PChome商品",
		priceSelectors: []string{
			"#PriceTotal",
			".o-prodPrice__price",
			".price-info__price",
			"span[id^='PriceTotal']",
		},
		titleSelectors: []string{"#NickName", ".o-prodMainName", "h1"},
		titleSeparator: "- PChome",
		order:          order,
	}
}
