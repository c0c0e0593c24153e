package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
)

// MockPlanRepository is a mock implementation of repository.PlanRepository.
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Insert(ctx context.Context, p *model.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPlanRepository) Latest(ctx context.Context, owner uuid.UUID, kind model.PlanKind) (*model.Plan, error) {
	args := m.Called(ctx, owner, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanRepository) History(ctx context.Context, owner uuid.UUID, kind model.PlanKind) ([]model.Plan, error) {
	args := m.Called(ctx, owner, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Plan), args.Error(1)
}

func (m *MockPlanRepository) Delete(ctx context.Context, owner, planID uuid.UUID) error {
	args := m.Called(ctx, owner, planID)
	return args.Error(0)
}

func TestPlanService_Latest(t *testing.T) {
	owner := uuid.New()
	stored := &model.Plan{ID: uuid.New(), OwnerID: owner, Kind: model.PlanTraining}

	tests := []struct {
		name     string
		repoPlan *model.Plan
		repoErr  error
		want     *model.Plan
		wantErr  error
	}{
		{name: "plan exists", repoPlan: stored, want: stored},
		{name: "no version yet", repoPlan: nil, want: nil},
		{name: "repository failure", repoErr: errors.New("db down"), wantErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPlanRepository)
			// A nil cache client degrades to a pass-through, every read hits the repo.
			svc := NewPlanService(repo, nil, nil)

			repo.On("Latest", mock.Anything, owner, model.PlanTraining).
				Return(tt.repoPlan, tt.repoErr)

			got, err := svc.Latest(context.Background(), owner, model.PlanTraining)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestPlanService_History(t *testing.T) {
	owner := uuid.New()
	versions := []model.Plan{
		{ID: uuid.New(), OwnerID: owner, Kind: model.PlanDiet},
		{ID: uuid.New(), OwnerID: owner, Kind: model.PlanDiet},
	}

	repo := new(MockPlanRepository)
	svc := NewPlanService(repo, nil, nil)
	repo.On("History", mock.Anything, owner, model.PlanDiet).Return(versions, nil)

	got, err := svc.History(context.Background(), owner, model.PlanDiet)
	require.NoError(t, err)
	assert.Equal(t, versions, got)
}

func TestPlanService_Delete(t *testing.T) {
	owner := uuid.New()
	planID := uuid.New()

	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "deletes owned version", repoErr: nil},
		{name: "missing or foreign version", repoErr: apperrors.ErrNotFound, wantErr: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPlanRepository)
			svc := NewPlanService(repo, nil, nil)
			repo.On("Delete", mock.Anything, owner, planID).Return(tt.repoErr)

			err := svc.Delete(context.Background(), owner, planID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
