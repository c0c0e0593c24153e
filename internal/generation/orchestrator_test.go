package generation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/plan"
)

// MockGenerator is a mock implementation of Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, kind model.PlanKind, profile *model.Profile) (string, error) {
	args := m.Called(ctx, kind, profile)
	return args.String(0), args.Error(1)
}

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

func testProfile() *model.Profile {
	return &model.Profile{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Age:      30,
		HeightCM: 178,
		WeightKG: 74,
		Goal:     "hypertrophy",
	}
}

const generatedTraining = `[{"day":"Monday","exercises":[{"name":"Squat","setsReps":"5x5"}]}]`

func TestOrchestrator_Regenerate_Success(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockPlanRepository)
	orch := NewOrchestrator(gen, repo, nil, zap.NewNop(), 0)
	profile := testProfile()

	gen.On("Generate", mock.Anything, model.PlanTraining, profile).
		Return("```json\n"+generatedTraining+"\n```", nil)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*model.Plan")).Return(nil)

	stored, err := orch.Regenerate(context.Background(), model.PlanTraining, profile)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, profile.ID, stored.OwnerID)
	assert.Equal(t, model.PlanTraining, stored.Kind)
	assert.Equal(t, time.Monday, stored.WeekStart.Weekday())

	var days []plan.TrainingDay
	require.NoError(t, json.Unmarshal(stored.Payload, &days))
	require.Len(t, days, 1)
	assert.Equal(t, "Squat", days[0].Exercises[0].Name)
	assert.NotEmpty(t, days[0].ImageRef)

	gen.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestOrchestrator_Regenerate_MalformedResponse(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockPlanRepository)
	orch := NewOrchestrator(gen, repo, nil, zap.NewNop(), 0)
	profile := testProfile()

	tests := []struct {
		name string
		text string
	}{
		{name: "not json", text: "I cannot help with that."},
		{name: "empty day array", text: "[]"},
		{name: "wrong shape", text: `{"plan":"see attachment"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen.On("Generate", mock.Anything, model.PlanTraining, profile).
				Return(tt.text, nil).Once()

			stored, err := orch.Regenerate(context.Background(), model.PlanTraining, profile)
			assert.ErrorIs(t, err, apperrors.ErrMalformedResponse)
			assert.Nil(t, stored)
		})
	}

	// Nothing malformed ever reaches the store.
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestOrchestrator_Regenerate_ServiceUnavailable(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockPlanRepository)
	orch := NewOrchestrator(gen, repo, nil, zap.NewNop(), 0)
	profile := testProfile()

	gen.On("Generate", mock.Anything, model.PlanDiet, profile).
		Return("", errors.New("upstream 500"))

	stored, err := orch.Regenerate(context.Background(), model.PlanDiet, profile)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.Nil(t, stored)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestOrchestrator_Regenerate_Timeout(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockPlanRepository)
	orch := NewOrchestrator(gen, repo, nil, zap.NewNop(), 10*time.Millisecond)
	profile := testProfile()

	gen.On("Generate", mock.Anything, model.PlanTraining, profile).
		Return("", context.DeadlineExceeded).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		})

	stored, err := orch.Regenerate(context.Background(), model.PlanTraining, profile)
	assert.ErrorIs(t, err, apperrors.ErrGenerationTimeout)
	assert.Nil(t, stored)
}

func TestOrchestrator_Regenerate_StoreWriteFailed(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockPlanRepository)
	orch := NewOrchestrator(gen, repo, nil, zap.NewNop(), 0)
	profile := testProfile()

	gen.On("Generate", mock.Anything, model.PlanTraining, profile).
		Return(generatedTraining, nil)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*model.Plan")).
		Return(errors.New("connection refused"))

	stored, err := orch.Regenerate(context.Background(), model.PlanTraining, profile)
	assert.ErrorIs(t, err, apperrors.ErrStoreWriteFailed)
	assert.Nil(t, stored)
}

func TestOrchestrator_Regenerate_KindsAreIndependent(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockPlanRepository)
	orch := NewOrchestrator(gen, repo, nil, zap.NewNop(), 0)
	profile := testProfile()

	gen.On("Generate", mock.Anything, model.PlanTraining, profile).
		Return("", errors.New("upstream 500"))
	gen.On("Generate", mock.Anything, model.PlanDiet, profile).
		Return(`[{"day":"Monday","calories":2200,"meals":["Breakfast: oats"]}]`, nil)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*model.Plan")).Return(nil)

	var wg sync.WaitGroup
	var trainingErr, dietErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, trainingErr = orch.Regenerate(context.Background(), model.PlanTraining, profile)
	}()
	go func() {
		defer wg.Done()
		_, dietErr = orch.Regenerate(context.Background(), model.PlanDiet, profile)
	}()
	wg.Wait()

	assert.ErrorIs(t, trainingErr, apperrors.ErrServiceUnavailable)
	assert.NoError(t, dietErr)
	repo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midweek",
			in:   time.Date(2024, 5, 15, 13, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday is its own anchor",
			in:   time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the preceding monday",
			in:   time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC),
			want: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekStart(tt.in))
		})
	}
}
