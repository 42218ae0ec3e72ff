package scraper

// NewMomoScraper creates the scraper for momo shopping pages
func NewMomoScraper(order []string) Scraper {
	return &shopScraper{
		platform:     "momo",
		hosts:        []string{"momoshop.com.tw", "momo.dm"},
		defaultTitle: "Momo商品",
		priceSelectors: []string{
			"ul.price li.special span.price b",
			".prdPrice b",
			"span.seoPrice",
			"span.price",
		},
		titleSelectors: []string{"#osmGoodsName", ".prdName", "h1"},
		titleSeparator: "- momo",
		order:          order,
	}
}
