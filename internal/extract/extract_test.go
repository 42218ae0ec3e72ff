package extract

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "25.03,121.56", Normalize(" ２５.０３，１２１.５６\r\n"))
	require.Equal(t, "a\nb", Normalize("a\r\nb"))
}

func TestExtractURL(t *testing.T) {
	msg := "快來看 momo 這個 https://www.momoshop.com.tw/goods/GoodsDetail.jsp?i_code=123 超便宜"
	require.Equal(t, "https://www.momoshop.com.tw/goods/GoodsDetail.jsp?i_code=123", ExtractURL(msg))
	require.Equal(t, "", ExtractURL("沒有網址"))
}

func TestExtractMapURL(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{
			text:     "鼎泰豐 信義店\nhttps://maps.app.goo.gl/AbCdEf123",
			expected: "https://maps.app.goo.gl/AbCdEf123",
		},
		{
			text:     "https://www.google.com.tw/maps/place/%E9%BC%8E/@25.03,121.56,17z 分享",
			expected: "https://www.google.com.tw/maps/place/%E9%BC%8E/@25.03,121.56,17z",
		},
		{
			text:     "https://goo.gl/maps/xyz",
			expected: "https://goo.gl/maps/xyz",
		},
		{
			text:     "https://maps.google.com/?q=25.03,121.56",
			expected: "https://maps.google.com/?q=25.03,121.56",
		},
		{
			text:     "https://google.example/somewhere",
			expected: "https://google.example/somewhere",
		},
		{
			text:     "今天吃拉麵",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			require.Equal(t, tc.expected, ExtractMapURL(tc.text))
		})
	}
}

func TestParseLatLngRoundTrip(t *testing.T) {
	pairs := [][2]float64{
		{25.0339639, 121.5644722},
		{-33.8688, 151.2093},
		{0.5, -0.25},
		{90, 180},
		{-12, 77},
	}
	for _, p := range pairs {
		s := strconv.FormatFloat(p[0], 'f', -1, 64) + "," + strconv.FormatFloat(p[1], 'f', -1, 64)
		got, ok := ParseLatLng(s)
		require.True(t, ok, s)
		require.Equal(t, p[0], got.Lat)
		require.Equal(t, p[1], got.Lng)
		require.Equal(t, s, got.String())
	}
}

func TestParseLatLngRejects(t *testing.T) {
	for _, s := range []string{"", "25.03", "abc,def", "25.03,121.56,7", "熱點 美食 25,121", "95,10", "0,0"} {
		_, ok := ParseLatLng(s)
		require.False(t, ok, s)
	}
	p, ok := ParseLatLng("25.03 , 121.56")
	require.True(t, ok)
	require.Equal(t, LatLng{Lat: 25.03, Lng: 121.56}, p)
}

func TestParseMapURL(t *testing.T) {
	testCases := []struct {
		url      string
		strategy string
		expected LatLng
	}{
		{
			url:      "https://www.google.com/maps/place/Taipei+101/@25.0339639,121.5644722,17z/data=!3m1!4b1",
			strategy: StrategyAt,
			expected: LatLng{Lat: 25.0339639, Lng: 121.5644722},
		},
		{
			url:      "https://maps.google.com/maps?q=22.6273,120.3014&z=16",
			strategy: StrategyQuery,
			expected: LatLng{Lat: 22.6273, Lng: 120.3014},
		},
		{
			url:      "https://www.google.com/maps/place/X/data=!4m6!3m5!1s0x0:0x0!8m2!3d24.1477!4d120.6736",
			strategy: StrategyData,
			expected: LatLng{Lat: 24.1477, Lng: 120.6736},
		},
		{
			url:      "https://www.google.com/maps/search/%2D33.8688%2C151.2093/@-33.8688,151.2093,15z",
			strategy: StrategyAt,
			expected: LatLng{Lat: -33.8688, Lng: 151.2093},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.strategy, func(t *testing.T) {
			got, strategy, ok := ParseMapURL(tc.url)
			require.True(t, ok)
			require.Equal(t, tc.strategy, strategy)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestParseMapURLPlusCode(t *testing.T) {
	got, strategy, ok := ParseMapURL("https://www.google.com/maps/place/7QQ32GJR%2BXX")
	require.True(t, ok)
	require.Equal(t, StrategyPlusCode, strategy)
	require.InDelta(t, 25.03, got.Lat, 0.01)
	require.InDelta(t, 121.54, got.Lng, 0.01)
}

func TestParseMapURLOrder(t *testing.T) {
	u := "https://www.google.com/maps/place/X/@10.5,20.5,17z/data=!3d11.5!4d21.5"

	_, strategy, ok := ParseMapURL(u)
	require.True(t, ok)
	require.Equal(t, StrategyAt, strategy)

	got, strategy, ok := ParseMapURL(u, StrategyData, StrategyAt)
	require.True(t, ok)
	require.Equal(t, StrategyData, strategy)
	require.Equal(t, LatLng{Lat: 11.5, Lng: 21.5}, got)

	_, _, ok = ParseMapURL("https://maps.app.goo.gl/abc")
	require.False(t, ok)

	require.Error(t, ValidateCoordOrder([]string{"at", "nope"}))
	require.NoError(t, ValidateCoordOrder(DefaultCoordOrder))
}

func TestPlaceNameFromURL(t *testing.T) {
	require.Equal(t, "鼎泰豐 信義店", PlaceNameFromURL("https://www.google.com/maps/place/%E9%BC%8E%E6%B3%B0%E8%B1%90+%E4%BF%A1%E7%BE%A9%E5%BA%97/@25.03,121.56,17z"))
	require.Equal(t, "", PlaceNameFromURL("https://maps.app.goo.gl/abc"))
}

func TestParseHTMLCoordinates(t *testing.T) {
	body := `<html><head><meta content="https://maps.google.com/maps/api/staticmap?center=25.0478%2C121.517&amp;zoom=17" property="og:image"></head>
	<body><script>window.x="/maps/place/data=!3d25.0478!4d121.5170"</script></body></html>`
	got, ok := ParseHTMLCoordinates(body)
	require.True(t, ok)
	require.Equal(t, LatLng{Lat: 25.0478, Lng: 121.517}, got)

	_, ok = ParseHTMLCoordinates("<html></html>")
	require.False(t, ok)
}

func TestTitleFromHTML(t *testing.T) {
	require.Equal(t, "阿宗麵線", TitleFromHTML(`<html><head><title>阿宗麵線 - Google 地圖</title></head></html>`))
	require.Equal(t, "Din Tai Fung", TitleFromHTML(`<html><head><meta property="og:title" content="Din Tai Fung - Google Maps"><title>x</title></head></html>`))
	require.Equal(t, "", TitleFromHTML(`<html><head><title>Google Maps</title></head></html>`))
}

func TestDistance(t *testing.T) {
	taipei := LatLng{Lat: 25.0330, Lng: 121.5654}
	kaohsiung := LatLng{Lat: 22.6273, Lng: 120.3014}
	require.InDelta(t, 297, Distance(taipei, kaohsiung), 5)
	require.Zero(t, Distance(taipei, taipei))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "鼎泰豐", Truncate("鼎泰豐信義店", 3))
	require.Equal(t, "abc", Truncate("abc", 30))
	require.Equal(t, "a b", SingleLine("a\nb"))
}
