package models

import "time"

type PasswordResetToken struct {
	ID        int64      `json:"id"`
	UserID    int        `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ValidAt — токен не использован и не истёк к моменту now.
func (t *PasswordResetToken) ValidAt(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
