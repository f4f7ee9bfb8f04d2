package models

import "time"

// User mirrors the users table owned by the account service. The room
// server only reads it to resolve display names at connect time.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
