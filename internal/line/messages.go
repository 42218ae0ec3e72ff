package line

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/models"
)

// MaxRadarBubbles caps the result bubbles of a radar carousel; LINE allows
// twelve bubbles and one is kept for the switch bubble.
const MaxRadarBubbles = 10

var categoryColors = map[string]string{
	models.CategoryFood:    "#E67E22",
	models.CategoryTravel:  "#27AE60",
	models.CategoryStay:    "#2980B9",
	models.CategoryOther:   "#7F8C8D",
	models.CategoryHotspot: "#E74C3C",
	models.CategoryAd:      "#D4AF37",
}

var categoryIcons = map[string]string{
	models.CategoryFood:    "https://cdn-icons-png.flaticon.com/512/706/706164.png",
	models.CategoryTravel:  "https://cdn-icons-png.flaticon.com/512/2664/2664531.png",
	models.CategoryStay:    "https://cdn-icons-png.flaticon.com/512/2983/2983803.png",
	models.CategoryOther:   "https://cdn-icons-png.flaticon.com/512/447/447031.png",
	models.CategoryHotspot: "https://cdn-icons-png.flaticon.com/512/785/785116.png",
	models.CategoryAd:      "https://cdn-icons-png.flaticon.com/512/2549/2549860.png",
}

const adBackground = "#F1C40F"

// CategoryColor returns the theme color of a category
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return categoryColors[models.CategoryOther]
}

// CategoryIcon returns the icon URL of a category
func CategoryIcon(category string) string {
	if u, ok := categoryIcons[category]; ok {
		return u
	}
	return categoryIcons[models.CategoryOther]
}

// TextMessage builds a plain text message
func TextMessage(text string) linebot.SendingMessage {
	return linebot.NewTextMessage(text)
}

// LocationRequest asks the user to share a location through a quick reply button
func LocationRequest(hint string) linebot.SendingMessage {
	return linebot.NewTextMessage("👇 " + hint).WithQuickReplies(
		linebot.NewQuickReplyItems(
			linebot.NewQuickReplyButton("", linebot.NewLocationAction("📍 傳送位置")),
		),
	)
}

// HelpMessage explains the bot
func HelpMessage() linebot.SendingMessage {
	return linebot.NewTextMessage(strings.Join([]string{
		"😺 順順地圖 😺",
		"",
		"👇 【私藏系列】",
		"找你自己存過的美食、景點、住宿。",
		"",
		"👇 【熱門系列】",
		"看看大家都在哪裡排隊！",
		"",
		"👇 【怎麼存檔？】",
		"分享 Google Maps 連結給我即可！(這會稍微慢一點喔🐾)",
		"",
		"👇 【比價小幫手】",
		"分享 momo 或 PChome 商品連結，順順幫你盯價格，輸入「追蹤清單」查看。",
	}, "\n"))
}

// RadarItem is one place shown in a radar carousel
type RadarItem struct {
	Name     string
	Category string
	URL      string
	Note     string
	Ad       bool
}

// SpotItem renders a personal spot at distanceKm from the user
func SpotItem(s models.Spot, distanceKm float64) RadarItem {
	meters := int(math.Round(distanceKm * 1000))
	note := fmt.Sprintf("🐾 距離約 %d m", meters)
	if meters > 1000 {
		note = fmt.Sprintf("🐾 距離約 %.1f km", distanceKm)
	}
	category := s.Category
	if category == "" {
		category = models.CategoryOther
	}
	return RadarItem{
		Name:     s.LocationName,
		Category: category,
		URL:      linkOr(s.URL, s.Address, navigationURL(s.Latitude, s.Longitude)),
		Note:     note,
	}
}

// HotspotItem renders a hotspot. Positive ad priority turns it into a
// sponsored bubble.
func HotspotItem(h models.Hotspot) RadarItem {
	item := RadarItem{
		Name:     h.Name,
		Category: models.CategoryHotspot,
		URL:      linkOr(h.GoogleURL, navigationURL(h.Latitude, h.Longitude)),
		Note:     fmt.Sprintf("🔥 %d 位貓友認證", h.Popularity),
	}
	if h.AdPriority > 0 {
		item.Ad = true
		item.Category = models.CategoryAd
		item.Name = "👑 " + h.Name
		item.Note = "👑 順順嚴選・人氣推薦"
	}
	return item
}

func navigationURL(lat, lng float64) string {
	if lat == 0 && lng == 0 {
		return "http://maps.google.com"
	}
	return "https://www.google.com/maps/search/?api=1&query=" + extract.LatLng{Lat: lat, Lng: lng}.String()
}

// linkOr returns the first candidate that is a web link
func linkOr(candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if strings.HasPrefix(c, "http://") || strings.HasPrefix(c, "https://") {
			return c
		}
	}
	return "http://maps.google.com"
}

// RadarTitle is the alt text of a radar carousel
func RadarTitle(mode, category string) string {
	if mode == models.ModeHotspot {
		return "🔥 熱門" + category
	}
	return "🐾 順順的" + category + "筆記"
}

// RadarCarousel renders up to MaxRadarBubbles items followed by a bubble
// that switches between personal and hotspot mode. No items yields a text
// message instead.
func RadarCarousel(items []RadarItem, center extract.LatLng, mode, category string) linebot.SendingMessage {
	if len(items) == 0 {
		return linebot.NewTextMessage(fmt.Sprintf("😿 喵嗚... 附近找不到「%s」耶。", category))
	}
	if len(items) > MaxRadarBubbles {
		items = items[:MaxRadarBubbles]
	}

	bubbles := make([]any, 0, len(items)+1)
	for _, item := range items {
		bubbles = append(bubbles, radarBubble(item))
	}
	bubbles = append(bubbles, switchBubble(center, mode, category))

	return flexMessage(RadarTitle(mode, category), map[string]any{
		"type":     "carousel",
		"contents": bubbles,
	})
}

func radarBubble(item RadarItem) map[string]any {
	color := CategoryColor(item.Category)
	background := color
	header := item.Category
	nameColor := "#000000"
	noteColor := "#8c8c8c"
	noteWeight := "regular"
	label := "🐾 跟著順順走"
	if item.Ad {
		background = adBackground
		header = "順順嚴選"
		nameColor = "#E67E22"
		noteColor = "#D35400"
		noteWeight = "bold"
		label = "👑 立即前往"
	}

	return map[string]any{
		"type": "bubble",
		"size": "micro",
		"header": map[string]any{
			"type":   "box",
			"layout": "vertical",
			"contents": []any{
				map[string]any{"type": "text", "text": header, "color": "#ffffff", "size": "xs", "weight": "bold"},
			},
			"backgroundColor": background,
			"paddingAll":      "sm",
		},
		"body": map[string]any{
			"type":   "box",
			"layout": "vertical",
			"contents": []any{
				map[string]any{"type": "text", "text": nonEmpty(item.Name, "未命名"), "weight": "bold", "size": "sm", "wrap": true, "color": nameColor},
				map[string]any{
					"type":   "box",
					"layout": "baseline",
					"margin": "md",
					"contents": []any{
						map[string]any{"type": "icon", "url": CategoryIcon(item.Category), "size": "xs"},
						map[string]any{"type": "text", "text": nonEmpty(item.Note, " "), "size": "xs", "color": noteColor, "margin": "sm", "weight": noteWeight},
					},
				},
			},
		},
		"footer": map[string]any{
			"type":   "box",
			"layout": "vertical",
			"contents": []any{
				map[string]any{
					"type":   "button",
					"action": map[string]any{"type": "uri", "label": label, "uri": item.URL},
					"style":  "primary",
					"color":  background,
					"height": "sm",
				},
			},
		},
	}
}

func switchBubble(center extract.LatLng, mode, category string) map[string]any {
	label := "🔥 看看熱點"
	text := fmt.Sprintf("熱點 %s %s", category, center.String())
	if mode == models.ModeHotspot {
		label = "🐾 回看私藏"
		text = center.String()
	}
	return map[string]any{
		"type": "bubble",
		"size": "micro",
		"body": map[string]any{
			"type":           "box",
			"layout":         "vertical",
			"justifyContent": "center",
			"height":         "160px",
			"contents": []any{
				map[string]any{"type": "text", "text": "換個口味？", "align": "center", "weight": "bold"},
				map[string]any{
					"type":   "button",
					"action": map[string]any{"type": "message", "label": label, "text": text},
					"style":  "secondary",
					"margin": "md",
				},
			},
		},
	}
}

// ProductCard shows the tracked price of a product with its recent history
// (newest first).
func ProductCard(p models.Product, history []models.PriceHistory) linebot.SendingMessage {
	name := extract.Truncate(nonEmpty(p.ProductName, "商品"), 60)
	rows := []any{
		map[string]any{"type": "text", "text": "💰 價格追蹤中", "size": "xs", "color": "#E67E22", "weight": "bold"},
		map[string]any{"type": "text", "text": name, "weight": "bold", "size": "md", "wrap": true, "margin": "md"},
		map[string]any{"type": "text", "text": fmt.Sprintf("$%s", formatPrice(p.CurrentPrice)), "size": "xl", "weight": "bold", "color": "#E74C3C", "margin": "md"},
	}
	if low, ok := lowestPrice(history); ok {
		rows = append(rows, map[string]any{
			"type": "text", "text": fmt.Sprintf("近期最低 $%s（%d 筆紀錄）", formatPrice(low), len(history)),
			"size": "xs", "color": "#8c8c8c", "margin": "sm",
		})
	}

	bubble := map[string]any{
		"type": "bubble",
		"body": map[string]any{"type": "box", "layout": "vertical", "contents": rows},
		"footer": map[string]any{
			"type":   "box",
			"layout": "vertical",
			"contents": []any{
				map[string]any{
					"type":   "button",
					"action": map[string]any{"type": "uri", "label": "🛒 前往商品頁", "uri": linkOr(p.OriginalURL)},
					"style":  "primary",
					"color":  "#E67E22",
					"height": "sm",
				},
			},
		},
	}
	return flexMessage(fmt.Sprintf("💰 %s $%s", name, formatPrice(p.CurrentPrice)), bubble)
}

// ProductList lists the user's tracked products as text
func ProductList(products []models.Product) linebot.SendingMessage {
	if len(products) == 0 {
		return linebot.NewTextMessage("📋 目前沒有追蹤中的商品，分享 momo 或 PChome 連結給順順吧！")
	}
	var b strings.Builder
	b.WriteString("📋 追蹤清單")
	for i, p := range products {
		fmt.Fprintf(&b, "\n\n%d. %s\n💰 $%s\n🔗 %s", i+1, extract.Truncate(p.ProductName, 40), formatPrice(p.CurrentPrice), p.OriginalURL)
	}
	return linebot.NewTextMessage(b.String())
}

// PriceDropMessage is pushed when the monitor sees a lower price
func PriceDropMessage(p models.Product, previous int) linebot.SendingMessage {
	return linebot.NewTextMessage(PriceDropText(p, previous))
}

// PriceDropText is shared with the Telegram alerts
func PriceDropText(p models.Product, previous int) string {
	drop := previous - p.CurrentPrice
	percent := 0.0
	if previous > 0 {
		percent = float64(drop) / float64(previous) * 100
	}
	return fmt.Sprintf("🎉 降價通知！\n\n%s\n💰 $%s → $%s（省 $%s，%.1f%%）\n🔗 %s",
		p.ProductName, formatPrice(previous), formatPrice(p.CurrentPrice), formatPrice(drop), percent, p.OriginalURL)
}

func lowestPrice(history []models.PriceHistory) (int, bool) {
	low := 0
	for _, h := range history {
		if h.Price > 0 && (low == 0 || h.Price < low) {
			low = h.Price
		}
	}
	return low, low > 0
}

// formatPrice adds thousands separators
func formatPrice(v int) string {
	s := fmt.Sprint(v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// flexMessage decodes a flex container built as plain JSON values. The
// builders above never produce invalid containers, so a decode error
// degrades to a text message carrying the alt text.
func flexMessage(altText string, container map[string]any) linebot.SendingMessage {
	raw, err := json.Marshal(container)
	if err != nil {
		return linebot.NewTextMessage(altText)
	}
	contents, err := linebot.UnmarshalFlexMessageJSON(raw)
	if err != nil {
		return linebot.NewTextMessage(altText)
	}
	return linebot.NewFlexMessage(extract.Truncate(altText, 400), contents)
}
