package models

import "time"

// Search modes remembered between a command and the location that follows it
const (
	ModePersonal = "personal"
	ModeHotspot  = "hotspot"
)

// UserState remembers the last search intent of a user
type UserState struct {
	UserID       string    `json:"user_id"`
	LastMode     string    `json:"last_mode"`
	LastCategory string    `json:"last_category"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultUserState is used when nothing was remembered for the user yet
func DefaultUserState(userID string) UserState {
	return UserState{UserID: userID, LastMode: ModePersonal, LastCategory: CategoryFood}
}
