package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"shunshun-bot/internal/classify"
	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/scraper"
)

// Store backends
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Geocoder providers
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

// Config holds the application settings
type Config struct {
	SupabaseURL  string
	SupabaseKey  string
	DatabaseURL  string
	DatabasePath string
	StoreBackend string

	LineChannelSecret string
	LineChannelToken  string

	TelegramBotToken string
	TelegramChatID   int64

	CheckIntervalMinutes int
	CheckInterval        time.Duration
	Port                 int

	GeocoderProvider   string
	NominatimBaseURL   string
	GeocoderUserAgent  string
	GoogleGeocodingKey string

	BrowserEnabled bool
	LogLevel       string
	OverridesPath  string
}

// Load reads the settings from environment variables. Nothing is required
// here, commands check what they need with the Require methods.
func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL:          strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:          os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DatabasePath:         envOr("DATABASE_PATH", "./shunshun.db"),
		LineChannelSecret:    os.Getenv("LINE_CHANNEL_SECRET"),
		LineChannelToken:     os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		CheckIntervalMinutes: 360,
		Port:                 10000,
		GeocoderProvider:     strings.ToLower(envOr("GEOCODER_PROVIDER", GeocoderNominatim)),
		NominatimBaseURL:     envOr("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent:    envOr("GEOCODER_USER_AGENT", "shunshun-bot/1.0"),
		GoogleGeocodingKey:   os.Getenv("GOOGLE_GEOCODING_API_KEY"),
		BrowserEnabled:       true,
		LogLevel:             envOr("LOG_LEVEL", "info"),
		OverridesPath:        os.Getenv("SHUNSHUN_CONFIG"),
	}

	// Chat ID is optional, alerts are only sent when it is set
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = chatID
	}

	if envInterval := os.Getenv("CHECK_INTERVAL_MINUTES"); envInterval != "" {
		if parsed, err := strconv.Atoi(envInterval); err == nil && parsed > 0 {
			cfg.CheckIntervalMinutes = parsed
		}
	}
	cfg.CheckInterval = time.Duration(cfg.CheckIntervalMinutes) * time.Minute

	if envPort := os.Getenv("PORT"); envPort != "" {
		parsed, err := strconv.Atoi(envPort)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", envPort)
		}
		cfg.Port = parsed
	}

	if v := os.Getenv("BROWSER_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("BROWSER_ENABLED: %w", err)
		}
		cfg.BrowserEnabled = enabled
	}

	if cfg.GeocoderProvider != GeocoderNominatim && cfg.GeocoderProvider != GeocoderGoogle {
		return nil, fmt.Errorf("unknown GEOCODER_PROVIDER %q", cfg.GeocoderProvider)
	}

	backend, err := cfg.backend(strings.ToLower(os.Getenv("STORE_BACKEND")))
	if err != nil {
		return nil, err
	}
	cfg.StoreBackend = backend

	return cfg, nil
}

func (c *Config) backend(requested string) (string, error) {
	switch requested {
	case BackendSupabase, BackendPostgres, BackendSQLite, BackendMemory:
		return requested, nil
	case "":
		if c.SupabaseURL != "" && c.SupabaseKey != "" {
			return BackendSupabase, nil
		}
		if c.DatabaseURL != "" {
			return BackendPostgres, nil
		}
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("unknown STORE_BACKEND %q", requested)
	}
}

// RequireSupabase checks the Supabase credentials
func (c *Config) RequireSupabase() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s not configured", strings.Join(missing, ", "))
	}
	return nil
}

// RequireLine checks the LINE channel credentials
func (c *Config) RequireLine() error {
	if !c.LineConfigured() {
		return errors.New("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN not configured")
	}
	return nil
}

// LineConfigured reports whether replies can go to LINE
func (c *Config) LineConfigured() bool {
	return c.LineChannelSecret != "" && c.LineChannelToken != ""
}

// TelegramConfigured reports whether price alerts can go to Telegram
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Overrides are the tunables read from the json5 file in SHUNSHUN_CONFIG
type Overrides struct {
	Keywords             classify.Keywords `json:"keywords"`
	PriceStrategies      []string          `json:"price_strategies"`
	CoordStrategies      []string          `json:"coord_strategies"`
	ClassifierStrategies []string          `json:"classifier_strategies"`
}

// DefaultOverrides are used for everything a file leaves out
func DefaultOverrides() Overrides {
	return Overrides{
		Keywords:             classify.DefaultKeywords(),
		PriceStrategies:      slices.Clone(scraper.DefaultStrategyOrder),
		CoordStrategies:      slices.Clone(extract.DefaultCoordOrder),
		ClassifierStrategies: slices.Clone(classify.DefaultOrder),
	}
}

// Validate reports unknown strategy names
func (o Overrides) Validate() error {
	if err := scraper.ValidateStrategyOrder(o.PriceStrategies); err != nil {
		return err
	}
	if err := extract.ValidateCoordOrder(o.CoordStrategies); err != nil {
		return err
	}
	return classify.ValidateOrder(o.ClassifierStrategies)
}

// ReadOverrides reads path and merges <name>.local.<ext> next to it over
// the result, then fills the gaps from DefaultOverrides. An empty path
// returns the defaults.
func ReadOverrides(path string) (Overrides, error) {
	out := DefaultOverrides()
	if path == "" {
		return out, nil
	}

	var file Overrides
	found := false
	for _, name := range []string{path, localName(path)} {
		var layer Overrides
		ok, err := readJSON5(name, &layer)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		if err := mergo.Merge(&file, layer, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("merge %s: %w", name, err)
		}
		if found {
			slog.Info("merging config with local overrides", "local", name)
		}
		found = true
	}
	if !found {
		return out, fmt.Errorf("read overrides %s: %w", path, os.ErrNotExist)
	}

	if err := mergo.Merge(&out, file, mergo.WithOverride); err != nil {
		return out, fmt.Errorf("merge overrides: %w", err)
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

func readJSON5(name string, v any) (bool, error) {
	raw, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json5.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// localName turns "shunshun.json5" into "shunshun.local.json5"
func localName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
