package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the persisted, user-editable record keyed by the identity
// provider's subject id. It is never hard-deleted: deactivation flips
// Active and the session core enforces the rest.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string    `json:"name" gorm:"size:255"`
	AvatarURL string    `json:"avatar_url" gorm:"size:512"`
	IsAdmin   bool      `json:"is_admin" gorm:"default:false"`
	Active    bool      `json:"active" gorm:"default:true;index"`

	Subscribed        bool       `json:"subscribed" gorm:"default:false"`
	SubscriptionUntil *time.Time `json:"subscription_until,omitempty"`

	// Tracked fields: a change in any of these regenerates both plans.
	Sex           string     `json:"sex" gorm:"size:32"`
	Age           int        `json:"age"`
	HeightCM      float64    `json:"height_cm"`
	WeightKG      float64    `json:"weight_kg"`
	ActivityLevel string     `json:"activity_level" gorm:"size:64"`
	Goal          string     `json:"goal" gorm:"size:128"`
	Preferences   JSONMap    `json:"preferences" gorm:"type:json"`
	Allergies     StringList `json:"allergies" gorm:"type:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Clone returns a deep copy, used to snapshot the prior state before an edit.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.SubscriptionUntil != nil {
		t := *p.SubscriptionUntil
		cp.SubscriptionUntil = &t
	}
	if p.Preferences != nil {
		cp.Preferences = make(JSONMap, len(p.Preferences))
		for k, v := range p.Preferences {
			cp.Preferences[k] = v
		}
	}
	if p.Allergies != nil {
		cp.Allergies = append(StringList(nil), p.Allergies...)
	}
	return &cp
}
