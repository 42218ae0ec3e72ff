package supabase

import (
	"context"
	"time"

	"shunshun-bot/internal/models"
)

type stateRow struct {
	UserID       string    `json:"user_id"`
	LastMode     string    `json:"last_mode"`
	LastCategory string    `json:"last_category"`
	UpdatedAt    timestamp `json:"updated_at"`
}

// GetUserState implements store.StateStore
func (c *Client) GetUserState(ctx context.Context, userID string) (models.UserState, error) {
	var rows []stateRow
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{"select": "*", "user_id": eq(userID)}).
		SetResult(&rows).
		Get("/user_states")
	if err := check(res, err, "get user state"); err != nil {
		return models.DefaultUserState(userID), err
	}
	if len(rows) == 0 {
		return models.DefaultUserState(userID), nil
	}

	st := models.DefaultUserState(userID)
	if rows[0].LastMode != "" {
		st.LastMode = rows[0].LastMode
	}
	if rows[0].LastCategory != "" {
		st.LastCategory = rows[0].LastCategory
	}
	st.UpdatedAt = rows[0].UpdatedAt.Time()
	return st, nil
}

// SetUserState upserts on the user_id primary key
func (c *Client) SetUserState(ctx context.Context, st models.UserState) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	res, err := c.request(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody(map[string]any{
			"user_id":       st.UserID,
			"last_mode":     st.LastMode,
			"last_category": st.LastCategory,
			"updated_at":    st.UpdatedAt,
		}).
		Post("/user_states")
	return check(res, err, "set user state")
}
