package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/line/linetest"
	"shunshun-bot/internal/models"
	"shunshun-bot/internal/scraper"
	"shunshun-bot/internal/store"
)

type call struct {
	Name     string
	Arg      string
	Center   extract.LatLng
	Category string
}

type fakeTasks struct {
	calls []call
}

func (f *fakeTasks) SaveTask(_ context.Context, raw, _, _ string) (models.Spot, error) {
	f.calls = append(f.calls, call{Name: "save", Arg: raw})
	return models.Spot{}, nil
}

func (f *fakeTasks) Radar(_ context.Context, userID string, center extract.LatLng, _ string) error {
	f.calls = append(f.calls, call{Name: "radar", Arg: userID, Center: center})
	return nil
}

func (f *fakeTasks) HotspotRadar(_ context.Context, category string, center extract.LatLng, _ string) error {
	f.calls = append(f.calls, call{Name: "hotspot", Category: category, Center: center})
	return nil
}

func (f *fakeTasks) TrackTask(_ context.Context, raw, _, _ string) (models.Product, error) {
	f.calls = append(f.calls, call{Name: "track", Arg: raw})
	return models.Product{}, nil
}

func (f *fakeTasks) ListTask(_ context.Context, userID, _ string) error {
	f.calls = append(f.calls, call{Name: "list", Arg: userID})
	return nil
}

func newTestRouter() (*Router, *fakeTasks, *store.Memory, *linetest.Recorder) {
	tasks := &fakeTasks{}
	st := store.NewMemory()
	rec := &linetest.Recorder{}
	return NewRouter(tasks, tasks, scraper.NewRegistry(nil), st, rec), tasks, st, rec
}

func TestRoutes(t *testing.T) {
	testCases := []struct {
		text  string
		route Route
	}{
		{"", RouteIgnored},
		{"今天天氣真好", RouteIgnored},
		{"教學", RouteHelp},
		{"HELP me", RouteHelp},
		{"找美食", RoutePersonal},
		{"找住宿", RoutePersonal},
		{"熱點美食", RouteHotspotMode},
		{"看看熱點 景點", RouteHotspotMode},
		{"熱點 美食 25.033,121.5654", RouteHotspot},
		{"熱點 咖啡 25.033,121.5654", RouteIgnored},
		{"25.033,121.5654", RouteRadar},
		{"25.033，121.5654", RouteRadar},
		{"順順帶我去", RouteAskLocation},
		{"追蹤清單", RouteList},
		{"【momo】好物 https://www.momoshop.com.tw/goods/GoodsDetail.jsp?i_code=123", RouteTrackPrice},
		{"https://24h.pchome.com.tw/prod/DYAJ1", RouteTrackPrice},
		{"鼎泰豐 說明書 https://maps.app.goo.gl/abc", RouteSaveSpot},
		{"https://www.google.com/maps/place/X/@25,121,17z", RouteSaveSpot},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			r, _, _, _ := newTestRouter()
			route, err := r.Handle(context.Background(), Message{Text: tc.text, UserID: "U1", ReplyToken: "r"})
			require.NoError(t, err)
			require.Equal(t, tc.route, route)
		})
	}
}

func TestPersonalCommandRemembersState(t *testing.T) {
	ctx := context.Background()
	r, _, st, rec := newTestRouter()

	_, err := r.Handle(ctx, Message{Text: "找景點", UserID: "U1", ReplyToken: "r"})
	require.NoError(t, err)

	state, err := st.GetUserState(ctx, "U1")
	require.NoError(t, err)
	require.Equal(t, models.ModePersonal, state.LastMode)
	require.Equal(t, models.CategoryTravel, state.LastCategory)

	msg := rec.Last()
	require.Equal(t, "👇 想去哪玩？傳送位置給順順！", msg["text"])
	require.Contains(t, msg, "quickReply")
}

func TestHotspotModeRemembersState(t *testing.T) {
	ctx := context.Background()
	r, _, st, rec := newTestRouter()

	_, err := r.Handle(ctx, Message{Text: "熱點住宿", UserID: "U1", ReplyToken: "r"})
	require.NoError(t, err)

	state, err := st.GetUserState(ctx, "U1")
	require.NoError(t, err)
	require.Equal(t, models.ModeHotspot, state.LastMode)
	require.Equal(t, models.CategoryStay, state.LastCategory)
	require.Equal(t, "👇 搜尋熱門住宿中... 請傳送位置！", rec.Last()["text"])
}

func TestHotspotQueryAndLocation(t *testing.T) {
	ctx := context.Background()
	r, tasks, _, _ := newTestRouter()

	_, err := r.Handle(ctx, Message{Text: "熱點 景點 25.1,121.5", UserID: "U1"})
	require.NoError(t, err)
	_, err = r.Handle(ctx, Message{UserID: "U1", Location: &extract.LatLng{Lat: 24.1, Lng: 120.6}})
	require.NoError(t, err)

	require.Equal(t, []call{
		{Name: "hotspot", Category: models.CategoryTravel, Center: extract.LatLng{Lat: 25.1, Lng: 121.5}},
		{Name: "radar", Arg: "U1", Center: extract.LatLng{Lat: 24.1, Lng: 120.6}},
	}, tasks.calls)
}

func TestLinksReceiveRawMessage(t *testing.T) {
	ctx := context.Background()
	r, tasks, _, _ := newTestRouter()
	raw := "好吃的店\nhttps://maps.app.goo.gl/abc"

	_, err := r.Handle(ctx, Message{Text: raw, UserID: "U1"})
	require.NoError(t, err)
	require.Equal(t, []call{{Name: "save", Arg: raw}}, tasks.calls)
}

func TestParseHotspotQuery(t *testing.T) {
	category, center, ok := parseHotspotQuery("熱點 住宿 25.04,121.52")
	require.True(t, ok)
	require.Equal(t, models.CategoryStay, category)
	require.Equal(t, 25.04, center.Lat)
	require.Equal(t, 121.52, center.Lng)

	for _, text := range []string{"熱點 咖啡 25.04,121.52", "熱點 熱點 25.04,121.52", "熱點 美食", "熱點 美食 abc,def"} {
		_, _, ok := parseHotspotQuery(text)
		require.False(t, ok, text)
	}
}
