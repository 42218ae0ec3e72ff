package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shunshun-bot/internal/line"
	"shunshun-bot/internal/models"
	"shunshun-bot/internal/prices"
	"shunshun-bot/internal/scraper"
	"shunshun-bot/internal/store"
)

// Alerter receives price drop alerts besides the product owner
type Alerter interface {
	Notify(ctx context.Context, text string) error
}

// Monitor periodically re-checks the price of every active product
type Monitor struct {
	store     store.ProductStore
	lookup    prices.PriceLookup
	messenger line.Messenger
	alerter   Alerter
	interval  time.Duration

	// Delay spaces out requests to the shops
	Delay time.Duration
}

// Summary counts the outcome of one pass
type Summary struct {
	Checked     int
	Drops       int
	Deactivated int
	Failed      int
}

// DefaultInterval is used when New gets no positive interval
const DefaultInterval = 6 * time.Hour

// New creates a monitor. alerter may be nil.
func New(st store.ProductStore, lookup prices.PriceLookup, messenger line.Messenger, alerter Alerter, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		store:     st,
		lookup:    lookup,
		messenger: messenger,
		alerter:   alerter,
		interval:  interval,
		Delay:     2 * time.Second,
	}
}

// Start checks immediately, then on every tick until ctx is done
func (m *Monitor) Start(ctx context.Context) {
	slog.InfoContext(ctx, "price monitor started", "interval", m.interval)

	m.CheckAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "price monitor stopped")
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll runs one pass over the active products
func (m *Monitor) CheckAll(ctx context.Context) Summary {
	var sum Summary
	products, err := m.store.ActiveProducts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "could not load active products", "err", err)
		return sum
	}

	for i, product := range products {
		if i > 0 && m.Delay > 0 {
			select {
			case <-ctx.Done():
				return sum
			case <-time.After(m.Delay):
			}
		}

		sum.Checked++
		res, err := m.CheckProduct(ctx, product)
		switch {
		case errors.Is(err, scraper.ErrNoPrice):
			sum.Deactivated++
		case err != nil:
			sum.Failed++
		case res.Dropped:
			sum.Drops++
		}
	}
	slog.InfoContext(ctx, "price check finished", "checked", sum.Checked, "drops", sum.Drops, "deactivated", sum.Deactivated, "failed", sum.Failed)
	return sum
}

// CheckResult is the outcome of checking one product
type CheckResult struct {
	Product  models.Product
	Previous int
	Dropped  bool
}

// CheckProduct fetches the current price of one product, records it and
// notifies the owner when it dropped. A page that no longer shows a price
// deactivates the product and returns scraper.ErrNoPrice; other errors leave
// the product untouched for the next pass.
func (m *Monitor) CheckProduct(ctx context.Context, product models.Product) (CheckResult, error) {
	out := CheckResult{Product: product, Previous: product.CurrentPrice}

	res, err := m.lookup.Lookup(ctx, product.OriginalURL)
	if errors.Is(err, scraper.ErrNoPrice) {
		slog.WarnContext(ctx, "price gone, deactivating product", "product_id", product.ID, "url", product.OriginalURL)
		if err := m.store.DeactivateProduct(ctx, product.ID); err != nil {
			return out, fmt.Errorf("deactivate product %d: %w", product.ID, err)
		}
		out.Product.IsActive = false
		return out, scraper.ErrNoPrice
	}
	if err != nil {
		slog.WarnContext(ctx, "price check failed", "product_id", product.ID, "url", product.OriginalURL, "err", err)
		return out, err
	}

	updated := product
	updated.CurrentPrice = res.Price
	updated.UpdatedAt = time.Time{}
	if res.Title != "" {
		updated.ProductName = res.Title
	}
	updated, err = m.store.UpsertProduct(ctx, updated)
	if err != nil {
		return out, fmt.Errorf("update product %d: %w", product.ID, err)
	}
	if err := m.store.AppendPriceHistory(ctx, updated.ID, updated.CurrentPrice); err != nil {
		slog.WarnContext(ctx, "could not record price history", "product_id", updated.ID, "err", err)
	}
	out.Product = updated

	if product.CurrentPrice > 0 && updated.CurrentPrice < product.CurrentPrice {
		out.Dropped = true
		m.notify(ctx, updated, product.CurrentPrice)
	}
	return out, nil
}

func (m *Monitor) notify(ctx context.Context, p models.Product, previous int) {
	slog.InfoContext(ctx, "price drop", "product_id", p.ID, "user_id", p.UserID, "from", previous, "to", p.CurrentPrice)

	if err := m.messenger.Push(ctx, p.UserID, line.PriceDropMessage(p, previous)); err != nil {
		slog.ErrorContext(ctx, "could not push price drop", "user_id", p.UserID, "err", err)
	}
	if m.alerter == nil {
		return
	}
	if err := m.alerter.Notify(ctx, line.PriceDropText(p, previous)); err != nil {
		slog.ErrorContext(ctx, "could not send price alert", "err", err)
	}
}
