package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanKind selects which generated artifact a plan row holds.
type PlanKind string

const (
	PlanTraining PlanKind = "training"
	PlanDiet     PlanKind = "diet"
)

// Valid reports whether k is a known kind.
func (k PlanKind) Valid() bool {
	return k == PlanTraining || k == PlanDiet
}

// Plan is one immutable version of a generated artifact. Rows are only ever
// inserted; the current plan for (owner, kind) is the row with the greatest
// CreatedAt.
type Plan struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID   uuid.UUID       `json:"owner_id" gorm:"type:char(36);not null;index:idx_plans_owner_kind"`
	Kind      PlanKind        `json:"kind" gorm:"size:16;not null;index:idx_plans_owner_kind"`
	WeekStart time.Time       `json:"week_start"`
	Payload   json.RawMessage `json:"payload" gorm:"type:json;not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
