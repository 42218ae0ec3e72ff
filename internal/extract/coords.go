package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	olc "github.com/google/open-location-code/go"
)

// LatLng is a WGS84 coordinate pair
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the pair the way users type it: "lat,lng"
func (p LatLng) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// Valid reports whether the pair is inside the WGS84 range and not the 0,0 placeholder
func (p LatLng) Valid() bool {
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

var (
	latLngRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)$`)

	atRe       = regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`)
	queryRe    = regexp.MustCompile(`[?&](?:q|query|ll|destination)=(-?\d+\.\d+),\s*(-?\d+\.\d+)`)
	dataLatRe  = regexp.MustCompile(`!3d(-?\d+\.\d+)`)
	dataLngRe  = regexp.MustCompile(`!4d(-?\d+\.\d+)`)
	plusCodeRe = regexp.MustCompile(`(?i)\b([23456789CFGHJMPQRVWX]{8}\+[23456789CFGHJMPQRVWX]{2,3})\b`)
)

// ParseLatLng parses a "lat,lng" message such as the ones LINE location
// buttons and the radar switch bubble produce. Pairs outside the WGS84 range
// and "0,0", the placeholder of spots without coordinates, are rejected.
func ParseLatLng(s string) (LatLng, bool) {
	m := latLngRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return LatLng{}, false
	}
	p, err := pair(m[1], m[2])
	if err != nil || !p.Valid() {
		return LatLng{}, false
	}
	return p, true
}

func pair(lat, lng string) (LatLng, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return LatLng{}, err
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return LatLng{}, err
	}
	return LatLng{Lat: la, Lng: ln}, nil
}

// CoordStrategy pulls a coordinate out of a decoded map URL
type CoordStrategy func(decoded string) (LatLng, bool)

// Coordinate strategy names, in default order
const (
	StrategyAt       = "at"
	StrategyQuery    = "query"
	StrategyData     = "data"
	StrategyPlusCode = "pluscode"
)

// DefaultCoordOrder is the order ParseMapURL tries strategies in
var DefaultCoordOrder = []string{StrategyAt, StrategyQuery, StrategyData, StrategyPlusCode}

var coordStrategies = map[string]CoordStrategy{
	StrategyAt:       submatchStrategy(atRe),
	StrategyQuery:    submatchStrategy(queryRe),
	StrategyData:     dataStrategy,
	StrategyPlusCode: plusCodeStrategy,
}

func submatchStrategy(re *regexp.Regexp) CoordStrategy {
	return func(s string) (LatLng, bool) {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return LatLng{}, false
		}
		p, err := pair(m[1], m[2])
		if err != nil || !p.Valid() {
			return LatLng{}, false
		}
		return p, true
	}
}

func dataStrategy(s string) (LatLng, bool) {
	lat := dataLatRe.FindStringSubmatch(s)
	lng := dataLngRe.FindStringSubmatch(s)
	if lat == nil || lng == nil {
		return LatLng{}, false
	}
	p, err := pair(lat[1], lng[1])
	if err != nil || !p.Valid() {
		return LatLng{}, false
	}
	return p, true
}

func plusCodeStrategy(s string) (LatLng, bool) {
	m := plusCodeRe.FindStringSubmatch(s)
	if m == nil {
		return LatLng{}, false
	}
	code := strings.ToUpper(m[1])
	if err := olc.CheckFull(code); err != nil {
		return LatLng{}, false
	}
	area, err := olc.Decode(code)
	if err != nil {
		return LatLng{}, false
	}
	lat, lng := area.Center()
	return LatLng{Lat: lat, Lng: lng}, true
}

// ParseMapURL extracts a coordinate from a Google Maps URL. It returns the
// name of the strategy that matched. Strategies run in order, DefaultCoordOrder
// when order is empty; unknown names are skipped.
func ParseMapURL(rawURL string, order ...string) (LatLng, string, bool) {
	if rawURL == "" {
		return LatLng{}, "", false
	}
	decoded := Unescape(rawURL)
	if len(order) == 0 {
		order = DefaultCoordOrder
	}
	for _, name := range order {
		fn, ok := coordStrategies[name]
		if !ok {
			continue
		}
		if p, ok := fn(decoded); ok {
			return p, name, true
		}
	}
	return LatLng{}, "", false
}

// ValidateCoordOrder reports unknown strategy names
func ValidateCoordOrder(order []string) error {
	for _, name := range order {
		if _, ok := coordStrategies[name]; !ok {
			return fmt.Errorf("unknown coordinate strategy %q", name)
		}
	}
	return nil
}

// Unescape percent-decodes s, keeping it as-is when it is not valid escaping.
// '+' is preserved because plus codes and place names rely on it.
func Unescape(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

// PlaceNameFromURL returns the place name embedded in a /place/<name>/ URL
func PlaceNameFromURL(rawURL string) string {
	decoded := Unescape(rawURL)
	_, rest, ok := strings.Cut(decoded, "/place/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	name, _, _ = strings.Cut(name, "?")
	return strings.TrimSpace(strings.ReplaceAll(name, "+", " "))
}
