// Package spots implements the map bookmarking assistant: saving shared
// Google Maps links and answering location radars.
package spots

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"shunshun-bot/internal/classify"
	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/line"
	"shunshun-bot/internal/models"
	"shunshun-bot/internal/resolver"
	"shunshun-bot/internal/store"
)

// Reply texts
const (
	msgSaved       = "✅ 已收藏地點！\n類別: %s\n標題: %s"
	msgUpdated     = "🔄 已更新地點！\n類別: %s\n標題: %s"
	msgSaveFailed  = "❌ 系統錯誤，儲存失敗。"
	msgNoCoords    = "⚠️ 連結已接收，但無法解析座標。"
	msgPlainNote   = "📝 已存為純文字筆記。"
	msgRadarFailed = "❌ 系統忙碌中"
)

const (
	titleLength   = 30
	untitled      = "未命名地點"
	radarLimit    = line.MaxRadarBubbles
	backfillLimit = 20
)

// Store is the persistence the assistant needs
type Store interface {
	store.SpotStore
	store.StateStore
}

// URLResolver expands short links
type URLResolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// Service runs the map tasks
type Service struct {
	store      Store
	resolver   URLResolver
	fetcher    resolver.Fetcher
	classifier *classify.Classifier
	messenger  line.Messenger

	// CoordOrder overrides extract.DefaultCoordOrder
	CoordOrder []string
}

// New creates the service. fetcher may be nil, then coordinates are only
// read from the resolved URL.
func New(st Store, res URLResolver, fetcher resolver.Fetcher, classifier *classify.Classifier, messenger line.Messenger) *Service {
	return &Service{
		store:      st,
		resolver:   res,
		fetcher:    fetcher,
		classifier: classifier,
		messenger:  messenger,
	}
}

// location is what could be learned about a map link
type location struct {
	URL       string
	Coords    extract.LatLng
	Strategy  string
	PageTitle string
	Found     bool
}

// locate resolves a map link and reads its coordinates, from the final URL
// first and from the page body when the URL carries none.
func (s *Service) locate(ctx context.Context, target string) location {
	final, err := s.resolver.Resolve(ctx, target)
	if err != nil {
		slog.WarnContext(ctx, "could not resolve map link", "url", target, "err", err)
	}
	if final == "" {
		final = target
	}
	loc := location{URL: final}

	if coords, strategy, ok := extract.ParseMapURL(final, s.CoordOrder...); ok {
		loc.Coords, loc.Strategy, loc.Found = coords, strategy, true
		return loc
	}
	if s.fetcher == nil {
		return loc
	}

	page, err := s.fetcher.Fetch(ctx, final)
	if err != nil {
		slog.WarnContext(ctx, "could not fetch map page", "url", final, "err", err)
		return loc
	}
	if page.URL != "" {
		loc.URL = page.URL
	}
	loc.PageTitle = extract.TitleFromHTML(page.Body)
	if coords, strategy, ok := extract.ParseMapURL(loc.URL, s.CoordOrder...); ok {
		loc.Coords, loc.Strategy, loc.Found = coords, strategy, true
	} else if coords, ok := extract.ParseHTMLCoordinates(page.Body); ok {
		loc.Coords, loc.Strategy, loc.Found = coords, "html", true
	}
	return loc
}

// messageTitle picks the spot name: the /place/ segment of the link, else the
// shared text around the link. bare reports that the text was nothing but
// the link; the title is then empty so a better name is looked up.
func messageTitle(text, target string) (title string, bare bool) {
	if name := extract.PlaceNameFromURL(target); name != "" {
		return name, false
	}
	rest := strings.TrimSpace(strings.Replace(text, target, "", 1))
	if rest == "" {
		return "", target != ""
	}
	return extract.Truncate(extract.SingleLine(rest), titleLength), false
}

// SaveTask stores the place shared in raw and replies with the outcome.
// Links without coordinates and plain text are kept as pending notes.
func (s *Service) SaveTask(ctx context.Context, raw, userID, replyToken string) (models.Spot, error) {
	if strings.TrimSpace(raw) == "" {
		return models.Spot{}, nil
	}
	text := extract.Normalize(raw)
	target := extract.ExtractMapURL(text)
	title, bare := messageTitle(text, target)
	slog.InfoContext(ctx, "saving spot", "user_id", userID, "url", target, "title", title)

	if target == "" {
		spot, err := s.savePending(ctx, userID, title, raw, "")
		s.reply(ctx, replyToken, msgPlainNote)
		return spot, err
	}

	loc := s.locate(ctx, target)
	if bare {
		if name := extract.PlaceNameFromURL(loc.URL); name != "" {
			title = name
		} else if loc.PageTitle != "" {
			title = extract.Truncate(loc.PageTitle, titleLength)
		}
	}
	if !loc.Found {
		slog.WarnContext(ctx, "link has no coordinates", "url", loc.URL)
		spot, err := s.savePending(ctx, userID, title, raw, target)
		s.reply(ctx, replyToken, msgNoCoords)
		return spot, err
	}
	slog.DebugContext(ctx, "coordinates parsed", "coords", loc.Coords.String(), "strategy", loc.Strategy)

	result := s.classifier.Classify(ctx, title, &loc.Coords)
	if title == "" || title == untitled {
		title = extract.Truncate(result.PlaceName, titleLength)
	}
	if title == "" {
		title = untitled
	}

	spot, created, err := s.store.SaveSpot(ctx, models.Spot{
		UserID:       userID,
		LocationName: title,
		URL:          loc.URL,
		Address:      loc.URL,
		Latitude:     loc.Coords.Lat,
		Longitude:    loc.Coords.Lng,
		Category:     result.Category,
	})
	if err != nil {
		slog.ErrorContext(ctx, "could not save spot", "user_id", userID, "err", err)
		s.reply(ctx, replyToken, msgSaveFailed)
		return spot, err
	}

	slog.InfoContext(ctx, "spot saved", "user_id", userID, "id", spot.ID, "category", spot.Category, "created", created, "strategy", result.Strategy)
	format := msgSaved
	if !created {
		format = msgUpdated
	}
	s.reply(ctx, replyToken, fmt.Sprintf(format, spot.Category, spot.LocationName))
	return spot, nil
}

func (s *Service) savePending(ctx context.Context, userID, title, content, url string) (models.Spot, error) {
	if title == "" {
		title = untitled
	}
	spot, _, err := s.store.SaveSpot(ctx, models.Spot{
		UserID:       userID,
		LocationName: models.PendingPrefix + title,
		URL:          url,
		Address:      content,
		Category:     models.CategoryOther,
	})
	if err != nil {
		slog.ErrorContext(ctx, "could not save pending note", "user_id", userID, "err", err)
	}
	return spot, err
}

// Radar replies with the places around center, using the mode and category
// the user last asked for.
func (s *Service) Radar(ctx context.Context, userID string, center extract.LatLng, replyToken string) error {
	state, err := s.store.GetUserState(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "could not load user state, using defaults", "user_id", userID, "err", err)
		state = models.DefaultUserState(userID)
	}
	if state.LastMode == models.ModeHotspot {
		return s.HotspotRadar(ctx, state.LastCategory, center, replyToken)
	}

	nearby, err := s.Nearby(ctx, userID, center, state.LastCategory, radarLimit)
	if err != nil {
		slog.ErrorContext(ctx, "radar search failed", "user_id", userID, "err", err)
		s.reply(ctx, replyToken, msgRadarFailed)
		return err
	}

	items := make([]line.RadarItem, 0, len(nearby))
	for _, n := range nearby {
		items = append(items, line.SpotItem(n.Spot, n.DistanceKm))
	}
	slog.InfoContext(ctx, "radar", "user_id", userID, "category", state.LastCategory, "results", len(items))
	return s.send(ctx, replyToken, line.RadarCarousel(items, center, models.ModePersonal, state.LastCategory))
}

// NearbySpot is a saved spot with its distance to the user
type NearbySpot struct {
	Spot       models.Spot
	DistanceKm float64
}

// Nearby returns the user's geotagged spots of a category, closest first
func (s *Service) Nearby(ctx context.Context, userID string, center extract.LatLng, category string, limit int) ([]NearbySpot, error) {
	spots, err := s.store.ListSpots(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	var nearby []NearbySpot
	for _, spot := range spots {
		if !spot.HasCoordinates() {
			continue
		}
		d := extract.Distance(center, extract.LatLng{Lat: spot.Latitude, Lng: spot.Longitude})
		nearby = append(nearby, NearbySpot{Spot: spot, DistanceKm: d})
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	if limit > 0 && len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// HotspotRadar replies with places popular among all users around center
func (s *Service) HotspotRadar(ctx context.Context, category string, center extract.LatLng, replyToken string) error {
	hotspots, err := s.store.Hotspots(ctx, center.Lat, center.Lng, category)
	if err != nil {
		slog.ErrorContext(ctx, "hotspot search failed", "category", category, "err", err)
		s.reply(ctx, replyToken, msgRadarFailed)
		return err
	}

	items := make([]line.RadarItem, 0, len(hotspots))
	for _, h := range hotspots {
		items = append(items, line.HotspotItem(h))
	}
	slog.InfoContext(ctx, "hotspot radar", "category", category, "results", len(items))
	return s.send(ctx, replyToken, line.RadarCarousel(items, center, models.ModeHotspot, category))
}

// BackfillPending retries the pending notes of a user that carry a link.
// Notes whose link now yields coordinates are renamed and classified.
func (s *Service) BackfillPending(ctx context.Context, userID string) (int, error) {
	spots, err := s.store.ListSpots(ctx, userID, models.CategoryOther)
	if err != nil {
		return 0, err
	}

	fixed, tried := 0, 0
	for _, spot := range spots {
		if !spot.IsPending() || spot.URL == "" {
			continue
		}
		if tried >= backfillLimit {
			break
		}
		tried++

		loc := s.locate(ctx, spot.URL)
		if !loc.Found {
			continue
		}
		title := strings.TrimPrefix(spot.LocationName, models.PendingPrefix)
		if name := extract.PlaceNameFromURL(loc.URL); name != "" {
			title = name
		}
		result := s.classifier.Classify(ctx, title, &loc.Coords)
		if (title == "" || title == untitled) && result.PlaceName != "" {
			title = result.PlaceName
		}

		spot.LocationName = title
		spot.URL = loc.URL
		spot.Latitude = loc.Coords.Lat
		spot.Longitude = loc.Coords.Lng
		spot.Category = result.Category
		if err := s.store.UpdateSpot(ctx, spot); err != nil {
			slog.WarnContext(ctx, "could not update pending spot", "id", spot.ID, "err", err)
			continue
		}
		slog.InfoContext(ctx, "pending spot backfilled", "id", spot.ID, "title", title, "category", spot.Category)
		fixed++
	}
	return fixed, nil
}

func (s *Service) reply(ctx context.Context, replyToken, text string) {
	_ = s.send(ctx, replyToken, line.TextMessage(text))
}

func (s *Service) send(ctx context.Context, replyToken string, msg linebot.SendingMessage) error {
	if err := s.messenger.Reply(ctx, replyToken, msg); err != nil {
		slog.ErrorContext(ctx, "line reply failed", "err", err)
		return err
	}
	return nil
}
