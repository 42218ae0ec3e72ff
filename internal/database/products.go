package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shunshun-bot/internal/models"
	"shunshun-bot/internal/store"
)

const productColumns = "id, user_id, original_url, product_name, current_price, is_active, updated_at"

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	var name sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.OriginalURL, &name, &p.CurrentPrice, &p.IsActive, &updatedAt)
	if err != nil {
		return p, err
	}
	p.ProductName = name.String
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()
	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpsertProduct implements store.ProductStore
func (db *DB) UpsertProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	err := db.queryRow(ctx,
		`INSERT INTO products (user_id, original_url, product_name, current_price, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, original_url) DO UPDATE SET
			product_name = excluded.product_name,
			current_price = excluded.current_price,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
		RETURNING id`,
		p.UserID, p.OriginalURL, p.ProductName, p.CurrentPrice, p.IsActive, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return p, fmt.Errorf("upsert product: %w", err)
	}
	return p, nil
}

// AppendPriceHistory implements store.ProductStore
func (db *DB) AppendPriceHistory(ctx context.Context, productID int64, price int) error {
	_, err := db.exec(ctx,
		"INSERT INTO price_history (product_id, price, recorded_at) VALUES (?, ?, ?)",
		productID, price, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

// ActiveProducts implements store.ProductStore
func (db *DB) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := db.query(ctx, "SELECT "+productColumns+" FROM products WHERE is_active = ? ORDER BY id", true)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// ListProducts implements store.ProductStore
func (db *DB) ListProducts(ctx context.Context, userID string) ([]models.Product, error) {
	rows, err := db.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE user_id = ? AND is_active = ? ORDER BY updated_at DESC, id DESC",
		userID, true,
	)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// DeactivateProduct implements store.ProductStore
func (db *DB) DeactivateProduct(ctx context.Context, id int64) error {
	res, err := db.exec(ctx, "UPDATE products SET is_active = ?, updated_at = ? WHERE id = ?", false, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// PriceHistory implements store.ProductStore
func (db *DB) PriceHistory(ctx context.Context, productID int64, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.query(ctx,
		"SELECT id, product_id, price, recorded_at FROM price_history WHERE product_id = ? ORDER BY recorded_at DESC, id DESC LIMIT ?",
		productID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.PriceHistory
	for rows.Next() {
		var h models.PriceHistory
		var recordedAt sql.NullTime
		if err := rows.Scan(&h.ID, &h.ProductID, &h.Price, &recordedAt); err != nil {
			return nil, err
		}
		if recordedAt.Valid {
			h.RecordedAt = recordedAt.Time
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// GetUserState implements store.StateStore
func (db *DB) GetUserState(ctx context.Context, userID string) (models.UserState, error) {
	st := models.UserState{UserID: userID}
	var updatedAt sql.NullTime
	err := db.queryRow(ctx,
		"SELECT last_mode, last_category, updated_at FROM user_states WHERE user_id = ?", userID,
	).Scan(&st.LastMode, &st.LastCategory, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultUserState(userID), nil
	}
	if err != nil {
		return models.DefaultUserState(userID), err
	}
	if updatedAt.Valid {
		st.UpdatedAt = updatedAt.Time
	}
	return st, nil
}

// SetUserState implements store.StateStore
func (db *DB) SetUserState(ctx context.Context, st models.UserState) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	_, err := db.exec(ctx,
		`INSERT INTO user_states (user_id, last_mode, last_category, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			last_mode = excluded.last_mode,
			last_category = excluded.last_category,
			updated_at = excluded.updated_at`,
		st.UserID, st.LastMode, st.LastCategory, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set user state: %w", err)
	}
	return nil
}
