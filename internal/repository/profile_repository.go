package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plexusfit/fitplan/internal/model"
)

// ProfileRepository defines profile persistence operations.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	// Upsert inserts the profile or updates the existing row with the same id.
	// Profiles are created lazily through this path on first load or edit.
	Upsert(ctx context.Context, profile *model.Profile) error
	Update(ctx context.Context, profile *model.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a new profile.
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Upsert inserts or fully replaces the row keyed by profile.ID.
func (r *profileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(profile).Error
}

// Update updates an existing profile.
func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// FindByID finds a profile by subject id.
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByEmail finds a profile by email.
func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns all profiles, newest first. Used by the admin table.
func (r *profileRepository) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// SetActive flips the soft deactivation flag. Profiles are never hard-deleted.
func (r *profileRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
