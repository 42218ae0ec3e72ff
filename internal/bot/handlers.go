package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/line"
	"shunshun-bot/internal/models"
)

// personalCommands map the exact command text to the category searched
var personalCommands = map[string]string{
	"找美食": models.CategoryFood,
	"找景點": models.CategoryTravel,
	"找住宿": models.CategoryStay,
}

var personalHints = map[string]string{
	models.CategoryFood:   "想吃什麼？傳送位置給順順！",
	models.CategoryTravel: "想去哪玩？傳送位置給順順！",
	models.CategoryStay:   "今晚住哪？傳送位置給順順！",
}

var hotspotCategories = []string{models.CategoryFood, models.CategoryTravel, models.CategoryStay}

var locationKeywords = []string{"雷達", "位置", "順順", "帶路"}

func isHelp(text string) bool {
	return strings.Contains(text, "教學") || strings.Contains(text, "說明") || strings.Contains(strings.ToLower(text), "help")
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// hotspotCategory returns the category of a "熱點…美食" style command
func hotspotCategory(text string) string {
	if !strings.Contains(text, "熱點") {
		return ""
	}
	for _, c := range hotspotCategories {
		if strings.Contains(text, c) {
			return c
		}
	}
	return ""
}

// parseHotspotQuery reads "熱點 <category> <lat>,<lng>", the text of the
// switch bubble of a personal radar. Unknown categories do not match.
func parseHotspotQuery(text string) (string, extract.LatLng, bool) {
	if !strings.HasPrefix(text, "熱點 ") {
		return "", extract.LatLng{}, false
	}
	parts := strings.Fields(text)
	if len(parts) < 3 || !strings.Contains(parts[len(parts)-1], ",") {
		return "", extract.LatLng{}, false
	}
	if !models.IsSearchCategory(parts[1]) {
		return "", extract.LatLng{}, false
	}
	center, ok := extract.ParseLatLng(parts[len(parts)-1])
	if !ok {
		return "", extract.LatLng{}, false
	}
	return parts[1], center, true
}

func (r *Router) personal(ctx context.Context, msg Message, category string) error {
	r.remember(ctx, msg.UserID, models.ModePersonal, category)
	return r.reply(ctx, msg.ReplyToken, line.LocationRequest(personalHints[category]))
}

func (r *Router) hotspotMode(ctx context.Context, msg Message, category string) error {
	r.remember(ctx, msg.UserID, models.ModeHotspot, category)
	return r.reply(ctx, msg.ReplyToken, line.LocationRequest("搜尋熱門"+category+"中... 請傳送位置！"))
}

// remember stores the search intent used by the next radar
func (r *Router) remember(ctx context.Context, userID, mode, category string) {
	err := r.states.SetUserState(ctx, models.UserState{UserID: userID, LastMode: mode, LastCategory: category})
	if err != nil {
		slog.WarnContext(ctx, "could not remember user state", "user_id", userID, "err", err)
		return
	}
	slog.InfoContext(ctx, "user state saved", "user_id", userID, "mode", mode, "category", category)
}

func (r *Router) reply(ctx context.Context, replyToken string, msg linebot.SendingMessage) error {
	if err := r.messenger.Reply(ctx, replyToken, msg); err != nil {
		slog.ErrorContext(ctx, "line reply failed", "err", err)
		return err
	}
	return nil
}
