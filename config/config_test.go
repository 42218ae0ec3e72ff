package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shunshun-bot/internal/classify"
	"shunshun-bot/internal/scraper"
)

var envKeys = []string{
	"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "DATABASE_URL", "DATABASE_PATH", "STORE_BACKEND",
	"LINE_CHANNEL_SECRET", "LINE_CHANNEL_ACCESS_TOKEN", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"CHECK_INTERVAL_MINUTES", "PORT", "NOMINATIM_BASE_URL", "GEOCODER_USER_AGENT",
	"GOOGLE_GEOCODING_API_KEY", "GEOCODER_PROVIDER", "BROWSER_ENABLED", "LOG_LEVEL", "SHUNSHUN_CONFIG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, cfg.StoreBackend)
	require.Equal(t, "./shunshun.db", cfg.DatabasePath)
	require.Equal(t, 360, cfg.CheckIntervalMinutes)
	require.Equal(t, 6*time.Hour, cfg.CheckInterval)
	require.Equal(t, 10000, cfg.Port)
	require.Equal(t, GeocoderNominatim, cfg.GeocoderProvider)
	require.True(t, cfg.BrowserEnabled)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.LineConfigured())
	require.False(t, cfg.TelegramConfigured())
	require.Error(t, cfg.RequireSupabase())
	require.Error(t, cfg.RequireLine())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "key")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("CHECK_INTERVAL_MINUTES", "30")
	t.Setenv("PORT", "8080")
	t.Setenv("BROWSER_ENABLED", "false")
	t.Setenv("GEOCODER_PROVIDER", "Google")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
	require.Equal(t, BackendSupabase, cfg.StoreBackend)
	require.NoError(t, cfg.RequireSupabase())
	require.NoError(t, cfg.RequireLine())
	require.True(t, cfg.TelegramConfigured())
	require.Equal(t, int64(-100123), cfg.TelegramChatID)
	require.Equal(t, 30*time.Minute, cfg.CheckInterval)
	require.Equal(t, 8080, cfg.Port)
	require.False(t, cfg.BrowserEnabled)
	require.Equal(t, GeocoderGoogle, cfg.GeocoderProvider)
}

func TestLoadBackendSelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/shunshun")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendPostgres, cfg.StoreBackend)

	t.Setenv("STORE_BACKEND", "memory")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.StoreBackend)

	t.Setenv("STORE_BACKEND", "mongo")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHECK_INTERVAL_MINUTES", "-5")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 360, cfg.CheckIntervalMinutes)

	t.Setenv("PORT", "abc")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("TELEGRAM_CHAT_ID", "chat")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("GEOCODER_PROVIDER", "bing")
	_, err = Load()
	require.Error(t, err)
}

func TestReadOverridesEmptyPath(t *testing.T) {
	o, err := ReadOverrides("")
	require.NoError(t, err)
	require.Equal(t, DefaultOverrides(), o)
}

func TestReadOverridesMergesLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shunshun.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// tighter food list
		keywords: { food: ["拉麵", "咖哩"] },
		price_strategies: ["meta", "regex"],
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shunshun.local.json5"), []byte(`{
		price_strategies: ["jsonld"],
		classifier_strategies: ["keywords"],
	}`), 0o644))

	o, err := ReadOverrides(path)
	require.NoError(t, err)
	require.Equal(t, []string{"拉麵", "咖哩"}, o.Keywords.Food)
	require.Equal(t, classify.DefaultKeywords().Travel, o.Keywords.Travel)
	require.Equal(t, []string{scraper.StrategyJSONLD}, o.PriceStrategies)
	require.Equal(t, []string{classify.StrategyKeywords}, o.ClassifierStrategies)
	require.Len(t, o.CoordStrategies, 4)
}

func TestReadOverridesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadOverrides(filepath.Join(dir, "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json5")
	require.NoError(t, os.WriteFile(bad, []byte(`{price_strategies: ["xpath"]}`), 0o644))
	_, err = ReadOverrides(bad)
	require.ErrorContains(t, err, "xpath")

	broken := filepath.Join(dir, "broken.json5")
	require.NoError(t, os.WriteFile(broken, []byte(`{keywords: `), 0o644))
	_, err = ReadOverrides(broken)
	require.Error(t, err)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "dir/shunshun.local.json5", localName("dir/shunshun.json5"))
	require.Equal(t, "shunshun.local", localName("shunshun"))
}
