package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/stretchr/testify/require"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/models"
)

func toJSON(t *testing.T, m linebot.SendingMessage) map[string]any {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func carouselBubbles(t *testing.T, msg map[string]any) []any {
	t.Helper()
	require.Equal(t, "flex", msg["type"])
	contents := msg["contents"].(map[string]any)
	require.Equal(t, "carousel", contents["type"])
	return contents["contents"].([]any)
}

func TestRadarCarouselPersonal(t *testing.T) {
	var items []RadarItem
	for i := 0; i < 12; i++ {
		items = append(items, SpotItem(models.Spot{
			LocationName: "咖啡廳",
			Category:     models.CategoryFood,
			URL:          "https://maps.app.goo.gl/abc",
		}, 0.35))
	}

	center := extract.LatLng{Lat: 25.033, Lng: 121.5654}
	msg := toJSON(t, RadarCarousel(items, center, models.ModePersonal, models.CategoryFood))
	require.Equal(t, "🐾 順順的美食筆記", msg["altText"])

	bubbles := carouselBubbles(t, msg)
	require.Len(t, bubbles, MaxRadarBubbles+1)

	raw, err := json.Marshal(bubbles[0])
	require.NoError(t, err)
	require.Contains(t, string(raw), "🐾 距離約 350 m")
	require.Contains(t, string(raw), "#E67E22")
	require.Contains(t, string(raw), "https://maps.app.goo.gl/abc")

	raw, err = json.Marshal(bubbles[len(bubbles)-1])
	require.NoError(t, err)
	require.Contains(t, string(raw), "換個口味？")
	require.Contains(t, string(raw), "熱點 美食 25.033,121.5654")
}

func TestRadarCarouselHotspotWithAd(t *testing.T) {
	items := []RadarItem{
		HotspotItem(models.Hotspot{Name: "鼎泰豐", GoogleURL: "https://maps.app.goo.gl/x", Popularity: 5, AdPriority: 2}),
		HotspotItem(models.Hotspot{Name: "永康牛肉麵", Popularity: 3, Latitude: 25.03, Longitude: 121.53}),
	}
	require.True(t, items[0].Ad)
	require.Equal(t, "👑 鼎泰豐", items[0].Name)
	require.Equal(t, "🔥 3 位貓友認證", items[1].Note)
	require.Equal(t, "https://www.google.com/maps/search/?api=1&query=25.03,121.53", items[1].URL)

	msg := toJSON(t, RadarCarousel(items, extract.LatLng{Lat: 25, Lng: 121.5}, models.ModeHotspot, models.CategoryFood))
	require.Equal(t, "🔥 熱門美食", msg["altText"])
	bubbles := carouselBubbles(t, msg)
	require.Len(t, bubbles, 3)

	raw, err := json.Marshal(bubbles[0])
	require.NoError(t, err)
	require.Contains(t, string(raw), "順順嚴選")
	require.Contains(t, string(raw), adBackground)

	raw, err = json.Marshal(bubbles[2])
	require.NoError(t, err)
	require.Contains(t, string(raw), "🐾 回看私藏")
	require.Contains(t, string(raw), `"text":"25,121.5"`)
}

func TestRadarCarouselEmpty(t *testing.T) {
	msg := toJSON(t, RadarCarousel(nil, extract.LatLng{}, models.ModePersonal, models.CategoryStay))
	require.Equal(t, "text", msg["type"])
	require.Equal(t, "😿 喵嗚... 附近找不到「住宿」耶。", msg["text"])
}

func TestSpotItemDistanceNote(t *testing.T) {
	require.Equal(t, "🐾 距離約 2.5 km", SpotItem(models.Spot{}, 2.46).Note)
	require.Equal(t, models.CategoryOther, SpotItem(models.Spot{}, 1).Category)
	// placeholder spots keep raw text in the address column
	require.Equal(t, "http://maps.google.com", SpotItem(models.Spot{Address: "some note"}, 1).URL)
}

func TestLocationRequest(t *testing.T) {
	msg := toJSON(t, LocationRequest("想吃什麼？傳送位置給順順！"))
	require.Equal(t, "👇 想吃什麼？傳送位置給順順！", msg["text"])
	items := msg["quickReply"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	action := items[0].(map[string]any)["action"].(map[string]any)
	require.Equal(t, "location", action["type"])
}

func TestProductCard(t *testing.T) {
	p := models.Product{ProductName: "Sony 耳機", CurrentPrice: 10490, OriginalURL: "https://24h.pchome.com.tw/prod/X"}
	msg := toJSON(t, ProductCard(p, []models.PriceHistory{{Price: 10490}, {Price: 9990}}))
	require.Equal(t, "flex", msg["type"])
	require.Equal(t, "💰 Sony 耳機 $10,490", msg["altText"])
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	require.Contains(t, string(raw), "近期最低 $9,990")
}

func TestPriceDropText(t *testing.T) {
	text := PriceDropText(models.Product{ProductName: "耳機", CurrentPrice: 900, OriginalURL: "https://momo.dm/a"}, 1000)
	require.Contains(t, text, "$1,000 → $900")
	require.Contains(t, text, "10.0%")
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "0", formatPrice(0))
	require.Equal(t, "999", formatPrice(999))
	require.Equal(t, "1,000", formatPrice(1000))
	require.Equal(t, "1,234,567", formatPrice(1234567))
	require.Equal(t, "-1,500", formatPrice(-1500))
}

func TestClientReply(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/reply" || r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New("secret", "token", linebot.WithEndpointBase(srv.URL))
	require.NoError(t, err)

	require.NoError(t, c.Reply(context.Background(), "reply-token", TextMessage("hi")))
	require.Equal(t, "reply-token", got["replyToken"])

	got = nil
	require.NoError(t, c.Reply(context.Background(), "", TextMessage("hi")))
	require.Nil(t, got)
}

func TestParseRequest(t *testing.T) {
	c, err := New("secret", "token")
	require.NoError(t, err)

	body := []byte(`{"destination":"x","events":[{"type":"message","replyToken":"r1","source":{"type":"user","userId":"U1"},"timestamp":1700000000000,"message":{"id":"1","type":"text","text":"找美食"}}]}`)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signature)
	events, err := c.ParseRequest(req)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "U1", events[0].Source.UserID)
	require.Equal(t, "找美食", events[0].Message.(*linebot.TextMessage).Text)

	req = httptest.NewRequest(http.MethodPost, "/callback", io.NopCloser(bytes.NewReader(body)))
	req.Header.Set("X-Line-Signature", "forged")
	_, err = c.ParseRequest(req)
	require.ErrorIs(t, err, linebot.ErrInvalidSignature)
}
