// Package prices implements the price tracking assistant for shop links.
package prices

import (
	"context"
	"errors"
	"log/slog"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/line"
	"shunshun-bot/internal/models"
	"shunshun-bot/internal/scraper"
	"shunshun-bot/internal/store"
)

const (
	msgNoPrice   = "😿 順順抓不到這個商品的價格，請確認是 momo 或 PChome 的商品頁。"
	msgLoadError = "😿 商品頁面暫時打不開，請稍後再試一次。"
	msgSaveError = "❌ 系統錯誤，儲存失敗。"

	historyShown = 10
)

// PriceLookup finds the current price of a product link
type PriceLookup interface {
	Lookup(ctx context.Context, rawMessage string) (scraper.Result, error)
}

// Service runs the price tasks
type Service struct {
	lookup    PriceLookup
	store     store.ProductStore
	messenger line.Messenger
}

// New creates the service
func New(lookup PriceLookup, st store.ProductStore, messenger line.Messenger) *Service {
	return &Service{lookup: lookup, store: st, messenger: messenger}
}

// TrackTask reads the price of the product shared in raw, starts tracking it
// for the user and records the observation.
func (s *Service) TrackTask(ctx context.Context, raw, userID, replyToken string) (models.Product, error) {
	res, err := s.lookup.Lookup(ctx, raw)
	switch {
	case errors.Is(err, extract.ErrNoURL):
		slog.InfoContext(ctx, "no product link in message", "user_id", userID)
		return models.Product{}, err
	case errors.Is(err, scraper.ErrNoPrice):
		slog.WarnContext(ctx, "no price on product page", "user_id", userID, "url", res.URL, "title", res.Title)
		s.reply(ctx, replyToken, line.TextMessage(msgNoPrice))
		return models.Product{}, err
	case err != nil:
		slog.ErrorContext(ctx, "product lookup failed", "user_id", userID, "url", res.URL, "err", err)
		s.reply(ctx, replyToken, line.TextMessage(msgLoadError))
		return models.Product{}, err
	}

	p, err := s.store.UpsertProduct(ctx, models.Product{
		UserID:       userID,
		OriginalURL:  res.URL,
		ProductName:  res.Title,
		CurrentPrice: res.Price,
		IsActive:     true,
	})
	if err != nil {
		slog.ErrorContext(ctx, "could not save product", "user_id", userID, "url", res.URL, "err", err)
		s.reply(ctx, replyToken, line.TextMessage(msgSaveError))
		return p, err
	}
	if err := s.store.AppendPriceHistory(ctx, p.ID, p.CurrentPrice); err != nil {
		slog.WarnContext(ctx, "could not record price history", "product_id", p.ID, "err", err)
	}
	slog.InfoContext(ctx, "product tracked", "user_id", userID, "product_id", p.ID, "price", p.CurrentPrice, "platform", res.Platform)

	history, err := s.store.PriceHistory(ctx, p.ID, historyShown)
	if err != nil {
		slog.WarnContext(ctx, "could not load price history", "product_id", p.ID, "err", err)
	}
	s.reply(ctx, replyToken, line.ProductCard(p, history))
	return p, nil
}

// ListTask replies with the products the user is tracking
func (s *Service) ListTask(ctx context.Context, userID, replyToken string) error {
	products, err := s.store.ListProducts(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "could not list products", "user_id", userID, "err", err)
		s.reply(ctx, replyToken, line.TextMessage("❌ 系統忙碌中"))
		return err
	}
	s.reply(ctx, replyToken, line.ProductList(products))
	return nil
}

func (s *Service) reply(ctx context.Context, replyToken string, msg linebot.SendingMessage) {
	if err := s.messenger.Reply(ctx, replyToken, msg); err != nil {
		slog.ErrorContext(ctx, "line reply failed", "err", err)
	}
}
