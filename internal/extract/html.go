package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlDataRe   = regexp.MustCompile(`!3d(-?\d+\.\d+)!4d(-?\d+\.\d+)`)
	htmlCenterRe = regexp.MustCompile(`center=(-?\d+\.\d+)(?:%2C|,)(-?\d+\.\d+)`)

	mapTitleSuffixes = []string{" - Google 地圖", " - Google Maps", " – Google 地圖", " – Google Maps"}
)

// ParseHTMLCoordinates looks for coordinates inside a fetched map page.
// Pages embed them as !3d/!4d pairs or as the center of the preview image.
func ParseHTMLCoordinates(body string) (LatLng, bool) {
	for _, re := range []*regexp.Regexp{htmlDataRe, htmlCenterRe} {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			p, err := pair(m[1], m[2])
			if err == nil && p.Valid() {
				return p, true
			}
		}
	}
	return LatLng{}, false
}

// TitleFromHTML returns the place name of a map page, from og:title or <title>
func TitleFromHTML(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	for _, suffix := range mapTitleSuffixes {
		title = strings.TrimSuffix(title, suffix)
	}
	if title == "Google Maps" || title == "Google 地圖" {
		return ""
	}
	return strings.TrimSpace(title)
}
