package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/repository"
)

// AdminService backs the administrator user-management surface. A profile
// deactivated here is picked up by the owner's session core on its next
// load, which then forces the sign-out.
type AdminService interface {
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type adminService struct {
	profiles repository.ProfileRepository
	log      *zap.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(profiles repository.ProfileRepository, log *zap.Logger) AdminService {
	return &adminService{profiles: profiles, log: log}
}

// ListProfiles returns every profile, newest first.
func (s *adminService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	return s.profiles.List(ctx)
}

// SetActive flips a profile's soft deactivation flag.
func (s *adminService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.profiles.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}
	s.log.Info("profile active flag changed",
		zap.String("profile", id.String()),
		zap.Bool("active", active))
	return nil
}
