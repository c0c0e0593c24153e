package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is a live authenticated identity issued by the identity provider.
// It is owned exclusively by the session core; everything else receives
// copies through snapshots.
type Session struct {
	UserID         uuid.UUID `json:"user_id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	ExpiresAt      time.Time `json:"expires_at"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
}

// Expired reports whether the session's access token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || now.After(s.ExpiresAt)
}
