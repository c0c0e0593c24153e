package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plexusfit/fitplan/internal/model"
)

// AuthUserRepository defines credential persistence for the built-in
// identity provider.
type AuthUserRepository interface {
	Create(ctx context.Context, user *model.AuthUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AuthUser, error)
	FindByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
}

type authUserRepository struct {
	db *gorm.DB
}

// NewAuthUserRepository creates a new auth user repository.
func NewAuthUserRepository(db *gorm.DB) AuthUserRepository {
	return &authUserRepository{db: db}
}

func (r *authUserRepository) Create(ctx context.Context, user *model.AuthUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *authUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AuthUser, error) {
	var user model.AuthUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authUserRepository) FindByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	var user model.AuthUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&model.AuthUser{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *authUserRepository) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.AuthUser{}).
		Where("id = ?", id).
		Update("email_confirmed_at", gorm.Expr("NOW()")).Error
}
