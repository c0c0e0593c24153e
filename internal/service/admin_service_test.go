package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
)

// MockProfileRepository is a mock implementation of repository.ProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]model.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Profile), args.Error(1)
}

func (m *MockProfileRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func TestAdminService_ListProfiles(t *testing.T) {
	profiles := []model.Profile{
		{ID: uuid.New(), Email: "a@example.com"},
		{ID: uuid.New(), Email: "b@example.com"},
	}

	repo := new(MockProfileRepository)
	svc := NewAdminService(repo, zap.NewNop())
	repo.On("List", mock.Anything).Return(profiles, nil)

	got, err := svc.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, profiles, got)
}

func TestAdminService_SetActive(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		active  bool
		repoErr error
		wantErr error
	}{
		{name: "deactivate", active: false},
		{name: "reactivate", active: true},
		{name: "unknown profile", active: false, repoErr: gorm.ErrRecordNotFound, wantErr: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProfileRepository)
			svc := NewAdminService(repo, zap.NewNop())
			repo.On("SetActive", mock.Anything, id, tt.active).Return(tt.repoErr)

			err := svc.SetActive(context.Background(), id, tt.active)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
