// Package bot routes chat messages to the map and price assistants.
package bot

import (
	"context"
	"log/slog"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/line"
	"shunshun-bot/internal/models"
	"shunshun-bot/internal/store"
)

// Message is one incoming chat message
type Message struct {
	Text       string
	UserID     string
	ReplyToken string
	// Location is set for shared LINE locations
	Location *extract.LatLng
}

// Route names the handler a message was dispatched to
type Route string

const (
	RouteIgnored     Route = "ignored"
	RouteHelp        Route = "help"
	RoutePersonal    Route = "personal"
	RouteHotspotMode Route = "hotspot_mode"
	RouteHotspot     Route = "hotspot"
	RouteRadar       Route = "radar"
	RouteAskLocation Route = "ask_location"
	RouteSaveSpot    Route = "save_spot"
	RouteTrackPrice  Route = "track_price"
	RouteList        Route = "list_products"
)

// SpotTasks is the map assistant
type SpotTasks interface {
	SaveTask(ctx context.Context, raw, userID, replyToken string) (models.Spot, error)
	Radar(ctx context.Context, userID string, center extract.LatLng, replyToken string) error
	HotspotRadar(ctx context.Context, category string, center extract.LatLng, replyToken string) error
}

// PriceTasks is the price assistant
type PriceTasks interface {
	TrackTask(ctx context.Context, raw, userID, replyToken string) (models.Product, error)
	ListTask(ctx context.Context, userID, replyToken string) error
}

// ShopMatcher tells shop links apart
type ShopMatcher interface {
	IsShopURL(text string) bool
}

// Router dispatches messages
type Router struct {
	spots     SpotTasks
	prices    PriceTasks
	shops     ShopMatcher
	states    store.StateStore
	messenger line.Messenger
}

// NewRouter creates a router
func NewRouter(spots SpotTasks, prices PriceTasks, shops ShopMatcher, states store.StateStore, messenger line.Messenger) *Router {
	return &Router{
		spots:     spots,
		prices:    prices,
		shops:     shops,
		states:    states,
		messenger: messenger,
	}
}

// Handle dispatches msg. Handlers report failures to the user themselves,
// the returned error is only meant for logging.
func (r *Router) Handle(ctx context.Context, msg Message) (Route, error) {
	if msg.Location != nil {
		return RouteRadar, r.spots.Radar(ctx, msg.UserID, *msg.Location, msg.ReplyToken)
	}

	text := extract.Normalize(msg.Text)
	if text == "" {
		return RouteIgnored, nil
	}
	slog.InfoContext(ctx, "message received", "user_id", msg.UserID, "text", extract.Truncate(extract.SingleLine(text), 80))

	// links first, shared place descriptions may contain command words
	if url := extract.ExtractURL(text); url != "" {
		if r.shops.IsShopURL(url) {
			_, err := r.prices.TrackTask(ctx, msg.Text, msg.UserID, msg.ReplyToken)
			return RouteTrackPrice, err
		}
		if extract.ExtractMapURL(text) != "" {
			_, err := r.spots.SaveTask(ctx, msg.Text, msg.UserID, msg.ReplyToken)
			return RouteSaveSpot, err
		}
	}

	if isHelp(text) {
		return RouteHelp, r.reply(ctx, msg.ReplyToken, line.HelpMessage())
	}
	if category, ok := personalCommands[text]; ok {
		return RoutePersonal, r.personal(ctx, msg, category)
	}
	// checked before the hotspot mode words, which it also contains
	if category, center, ok := parseHotspotQuery(text); ok {
		return RouteHotspot, r.spots.HotspotRadar(ctx, category, center, msg.ReplyToken)
	}
	if category := hotspotCategory(text); category != "" {
		return RouteHotspotMode, r.hotspotMode(ctx, msg, category)
	}
	if text == "追蹤清單" {
		return RouteList, r.prices.ListTask(ctx, msg.UserID, msg.ReplyToken)
	}
	if center, ok := extract.ParseLatLng(text); ok {
		return RouteRadar, r.spots.Radar(ctx, msg.UserID, center, msg.ReplyToken)
	}
	if containsAny(text, locationKeywords) {
		return RouteAskLocation, r.reply(ctx, msg.ReplyToken, line.LocationRequest("告訴順順你在哪裡？"))
	}

	slog.DebugContext(ctx, "message ignored", "user_id", msg.UserID)
	return RouteIgnored, nil
}
