package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/session"
)

// MockPlanService is a mock implementation of service.PlanService.
type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) Latest(ctx context.Context, owner uuid.UUID, kind model.PlanKind) (*model.Plan, error) {
	args := m.Called(ctx, owner, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanService) History(ctx context.Context, owner uuid.UUID, kind model.PlanKind) ([]model.Plan, error) {
	args := m.Called(ctx, owner, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Plan), args.Error(1)
}

func (m *MockPlanService) Delete(ctx context.Context, owner, planID uuid.UUID) error {
	args := m.Called(ctx, owner, planID)
	return args.Error(0)
}

func (m *MockPlanService) CreateNew(ctx context.Context, profile *model.Profile, kind model.PlanKind) (*model.Plan, error) {
	args := m.Called(ctx, profile, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func emptyCore() *session.Core {
	return session.NewCore(nil, nil, nil, "admin@plexus.es", 0, zap.NewNop())
}

func planContext(t *testing.T, method, kind string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if kind != "" {
		c.SetParamNames("kind")
		c.SetParamValues(kind)
	}
	if userID != uuid.Nil {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID.String(),
			"email":   "user@example.com",
		})
		c.Set("user", token)
	}
	return c, rec
}

func TestPlanHandler_Latest_OwnerComesFromTokenClaims(t *testing.T) {
	owner := uuid.New()
	plans := new(MockPlanService)
	plans.On("Latest", mock.Anything, owner, model.PlanTraining).
		Return(&model.Plan{ID: uuid.New(), OwnerID: owner, Kind: model.PlanTraining}, nil)

	h := NewPlanHandler(emptyCore(), plans)

	c, rec := planContext(t, http.MethodGet, "training", owner)
	require.NoError(t, h.Latest(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	plans.AssertExpectations(t)
}

func TestPlanHandler_Latest_MissingClaims(t *testing.T) {
	plans := new(MockPlanService)
	h := NewPlanHandler(emptyCore(), plans)

	c, _ := planContext(t, http.MethodGet, "training", uuid.Nil)
	err := h.Latest(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	plans.AssertNotCalled(t, "Latest", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanHandler_Latest_InvalidKind(t *testing.T) {
	h := NewPlanHandler(emptyCore(), new(MockPlanService))

	c, _ := planContext(t, http.MethodGet, "yoga", uuid.New())
	err := h.Latest(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestPlanHandler_Delete_ScopedToClaimedOwner(t *testing.T) {
	owner := uuid.New()
	planID := uuid.New()
	plans := new(MockPlanService)
	plans.On("Delete", mock.Anything, owner, planID).Return(nil)

	h := NewPlanHandler(emptyCore(), plans)

	c, rec := planContext(t, http.MethodDelete, "", owner)
	c.SetParamNames("id")
	c.SetParamValues(planID.String())

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	plans.AssertExpectations(t)
}

func TestPlanHandler_Create_RequiresMatchingProfile(t *testing.T) {
	// The core holds no profile for the claimed user, so there is nothing to
	// generate from.
	plans := new(MockPlanService)
	h := NewPlanHandler(emptyCore(), plans)

	c, _ := planContext(t, http.MethodPost, "training", uuid.New())
	err := h.Create(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	plans.AssertNotCalled(t, "CreateNew", mock.Anything, mock.Anything, mock.Anything)
}
