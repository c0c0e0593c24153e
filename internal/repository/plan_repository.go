package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
)

// PlanRepository defines versioned plan persistence. Plans are append-only:
// there is deliberately no update operation, every save is a new row.
type PlanRepository interface {
	Insert(ctx context.Context, plan *model.Plan) error
	// Latest returns the row with maximum created_at for (owner, kind),
	// or nil when no version exists.
	Latest(ctx context.Context, owner uuid.UUID, kind model.PlanKind) (*model.Plan, error)
	// History returns all versions for (owner, kind), most recent first.
	History(ctx context.Context, owner uuid.UUID, kind model.PlanKind) ([]model.Plan, error)
	// Delete removes exactly one version owned by the caller.
	Delete(ctx context.Context, owner, planID uuid.UUID) error
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Insert appends a new plan version.
func (r *planRepository) Insert(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// Latest returns the newest version for (owner, kind), nil if none exist.
func (r *planRepository) Latest(ctx context.Context, owner uuid.UUID, kind model.PlanKind) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", owner, kind).
		Order("created_at DESC").
		First(&plan).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// History returns all versions for (owner, kind), newest first.
func (r *planRepository) History(ctx context.Context, owner uuid.UUID, kind model.PlanKind) ([]model.Plan, error) {
	var plans []model.Plan
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", owner, kind).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Delete removes one version; missing or foreign rows yield ErrNotFound.
func (r *planRepository) Delete(ctx context.Context, owner, planID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", planID, owner).
		Delete(&model.Plan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
