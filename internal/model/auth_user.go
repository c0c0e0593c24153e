package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthUser is the credential record owned by the built-in identity provider.
// Profile data lives in Profile; this table only holds what the provider
// needs to authenticate and to track email confirmation.
type AuthUser struct {
	ID               uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email            string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *AuthUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Confirmed reports whether the user has confirmed their email address.
func (u *AuthUser) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}
