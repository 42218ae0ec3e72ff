package supabase

import (
	"context"
	"strconv"
	"time"

	"shunshun-bot/internal/models"
	"shunshun-bot/internal/store"
)

type productRow struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	OriginalURL  string    `json:"original_url"`
	ProductName  string    `json:"product_name"`
	CurrentPrice int       `json:"current_price"`
	IsActive     bool      `json:"is_active"`
	UpdatedAt    timestamp `json:"updated_at"`
}

func (r productRow) model() models.Product {
	return models.Product{
		ID:           r.ID,
		UserID:       r.UserID,
		OriginalURL:  r.OriginalURL,
		ProductName:  r.ProductName,
		CurrentPrice: r.CurrentPrice,
		IsActive:     r.IsActive,
		UpdatedAt:    r.UpdatedAt.Time(),
	}
}

func productModels(rows []productRow) []models.Product {
	products := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.model())
	}
	return products
}

// UpsertProduct looks the product up by user and URL, then updates or inserts it
func (c *Client) UpsertProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	body := map[string]any{
		"user_id":       p.UserID,
		"original_url":  p.OriginalURL,
		"product_name":  p.ProductName,
		"current_price": p.CurrentPrice,
		"is_active":     p.IsActive,
		"updated_at":    p.UpdatedAt,
	}

	var existing []productRow
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select":       "id",
			"user_id":      eq(p.UserID),
			"original_url": eq(p.OriginalURL),
			"limit":        "1",
		}).
		SetResult(&existing).
		Get("/products")
	if err := check(res, err, "find product"); err != nil {
		return p, err
	}

	var rows []productRow
	req := c.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body).
		SetResult(&rows)
	if len(existing) > 0 {
		p.ID = existing[0].ID
		res, err = req.SetQueryParam("id", eq(p.ID)).Patch("/products")
	} else {
		res, err = req.Post("/products")
	}
	if err := check(res, err, "save product"); err != nil {
		return p, err
	}
	if len(rows) > 0 {
		p.ID = rows[0].ID
	}
	return p, nil
}

// AppendPriceHistory implements store.ProductStore
func (c *Client) AppendPriceHistory(ctx context.Context, productID int64, price int) error {
	res, err := c.request(ctx).
		SetBody(map[string]any{
			"product_id":  productID,
			"price":       price,
			"recorded_at": time.Now().UTC(),
		}).
		Post("/price_history")
	return check(res, err, "append price history")
}

// ActiveProducts implements store.ProductStore
func (c *Client) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select":    "*",
			"is_active": "eq.true",
			"order":     "id.asc",
		}).
		SetResult(&rows).
		Get("/products")
	if err := check(res, err, "active products"); err != nil {
		return nil, err
	}
	return productModels(rows), nil
}

// ListProducts implements store.ProductStore
func (c *Client) ListProducts(ctx context.Context, userID string) ([]models.Product, error) {
	var rows []productRow
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select":    "*",
			"user_id":   eq(userID),
			"is_active": "eq.true",
			"order":     "updated_at.desc",
		}).
		SetResult(&rows).
		Get("/products")
	if err := check(res, err, "list products"); err != nil {
		return nil, err
	}
	return productModels(rows), nil
}

// DeactivateProduct implements store.ProductStore
func (c *Client) DeactivateProduct(ctx context.Context, id int64) error {
	var rows []productRow
	res, err := c.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", eq(id)).
		SetBody(map[string]any{"is_active": false, "updated_at": time.Now().UTC()}).
		SetResult(&rows).
		Patch("/products")
	if err := check(res, err, "deactivate product"); err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

type historyRow struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Price      int       `json:"price"`
	RecordedAt timestamp `json:"recorded_at"`
}

// PriceHistory implements store.ProductStore
func (c *Client) PriceHistory(ctx context.Context, productID int64, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []historyRow
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select":     "*",
			"product_id": eq(productID),
			"order":      "recorded_at.desc",
			"limit":      strconv.Itoa(limit),
		}).
		SetResult(&rows).
		Get("/price_history")
	if err := check(res, err, "price history"); err != nil {
		return nil, err
	}

	history := make([]models.PriceHistory, 0, len(rows))
	for _, r := range rows {
		history = append(history, models.PriceHistory{
			ID:         r.ID,
			ProductID:  r.ProductID,
			Price:      r.Price,
			RecordedAt: r.RecordedAt.Time(),
		})
	}
	return history, nil
}
