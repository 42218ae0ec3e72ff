package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shunshun-bot/config"
	"shunshun-bot/internal/bot"
	"shunshun-bot/internal/classify"
	"shunshun-bot/internal/database"
	"shunshun-bot/internal/geocode"
	"shunshun-bot/internal/line"
	"shunshun-bot/internal/monitor"
	"shunshun-bot/internal/prices"
	"shunshun-bot/internal/resolver"
	"shunshun-bot/internal/scraper"
	"shunshun-bot/internal/spots"
	"shunshun-bot/internal/store"
	"shunshun-bot/internal/supabase"
	"shunshun-bot/internal/telegram"
)

// app is every service a command may need, wired from the config
type app struct {
	store      store.Store
	messenger  line.Messenger
	lineClient *line.Client
	tracker    *scraper.Tracker
	spots      *spots.Service
	prices     *prices.Service
	monitor    *monitor.Monitor
	router     *bot.Router
}

func (a *app) Close() error {
	return a.store.Close()
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	overrides, err := config.ReadOverrides(cfg.OverridesPath)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{store: st, messenger: line.LogMessenger{}}
	if cfg.LineConfigured() {
		client, err := line.New(cfg.LineChannelSecret, cfg.LineChannelToken)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("init line client: %w", err)
		}
		a.lineClient = client
		a.messenger = client
	} else {
		slog.Warn("LINE credentials not configured, replies are only logged")
	}

	httpResolver := resolver.NewHTTPResolver(resolver.HTTPOptions{RateLimit: 2})
	var pageFetcher resolver.Fetcher = httpResolver
	if cfg.BrowserEnabled {
		pageFetcher = resolver.Chain{resolver.NewBrowserFetcher(), httpResolver}
	}

	geocoder, err := newGeocoder(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	classifier := classify.New(overrides.Keywords, geocoder, overrides.ClassifierStrategies)

	a.spots = spots.New(st, httpResolver, httpResolver, classifier, a.messenger)
	a.spots.CoordOrder = overrides.CoordStrategies

	a.tracker = scraper.NewTracker(scraper.NewRegistry(overrides.PriceStrategies), pageFetcher)
	a.prices = prices.New(a.tracker, st, a.messenger)

	var alerter monitor.Alerter
	if cfg.TelegramConfigured() {
		tg, err := telegram.Init(cfg.TelegramBotToken)
		if err != nil {
			slog.Warn("telegram alerts disabled", "err", err)
		} else {
			alerter = telegram.NewNotifier(tg, cfg.TelegramChatID)
		}
	}
	a.monitor = monitor.New(st, a.tracker, a.messenger, alerter, cfg.CheckInterval)

	a.router = bot.NewRouter(a.spots, a.prices, a.tracker.Registry(), st, a.messenger)
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSupabase:
		if err := cfg.RequireSupabase(); err != nil {
			return nil, err
		}
		return supabase.New(cfg.SupabaseURL, cfg.SupabaseKey)
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL not configured")
		}
		return database.NewPostgres(ctx, cfg.DatabaseURL)
	case config.BackendMemory:
		slog.Warn("using the in-memory store, nothing is persisted")
		return store.NewMemory(), nil
	default:
		return database.New(cfg.DatabasePath)
	}
}

func newGeocoder(cfg *config.Config) (geocode.Geocoder, error) {
	var next geocode.Geocoder
	switch cfg.GeocoderProvider {
	case config.GeocoderGoogle:
		g, err := geocode.NewGoogle("", cfg.GoogleGeocodingKey)
		if err != nil {
			return nil, err
		}
		next = g
	default:
		next = geocode.NewNominatim(cfg.NominatimBaseURL, cfg.GeocoderUserAgent)
	}
	return geocode.NewCached(next, 1024, 24*time.Hour), nil
}
