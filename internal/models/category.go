package models

// Spot categories. Hotspot and Ad are only used when rendering hotspot results.
const (
	CategoryFood    = "美食"
	CategoryTravel  = "景點"
	CategoryStay    = "住宿"
	CategoryOther   = "其它"
	CategoryHotspot = "熱點"
	CategoryAd      = "廣告"
)

// IsSearchCategory reports whether c can be used as a radar filter
func IsSearchCategory(c string) bool {
	switch c {
	case CategoryFood, CategoryTravel, CategoryStay, CategoryOther:
		return true
	}
	return false
}
