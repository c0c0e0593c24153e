package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/service"
	"github.com/plexusfit/fitplan/internal/session"
)

// PlanHandler exposes the versioned plan store.
type PlanHandler struct {
	core  *session.Core
	plans service.PlanService
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(core *session.Core, plans service.PlanService) *PlanHandler {
	return &PlanHandler{core: core, plans: plans}
}

// owner derives the caller's identity from the token claims verified by the
// JWT middleware, and pairs it with the core's profile when that profile
// belongs to the same user.
func (h *PlanHandler) owner(c echo.Context) (uuid.UUID, *model.Profile, error) {
	id, err := claimedUserID(c)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(apperrors.ErrNoSession)
		return uuid.Nil, nil, echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	var profile *model.Profile
	if state := h.core.Snapshot(); state.Profile != nil && state.Profile.ID == id {
		profile = state.Profile
	}
	return id, profile, nil
}

// claimedUserID extracts the subject id from the verified request token.
func claimedUserID(c echo.Context) (uuid.UUID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, apperrors.ErrNoSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperrors.ErrNoSession
	}
	sub, _ := claims["user_id"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperrors.ErrNoSession
	}
	return id, nil
}

func planKind(c echo.Context) (model.PlanKind, error) {
	kind := model.PlanKind(c.Param("kind"))
	if !kind.Valid() {
		return "", echo.NewHTTPError(http.StatusBadRequest, "kind must be training or diet")
	}
	return kind, nil
}

// Latest godoc
// @Summary Current plan for a kind
// @Tags plans
// @Produce json
// @Param kind path string true "training or diet"
// @Success 200 {object} model.Plan
// @Success 204 "no plan exists yet"
// @Security BearerAuth
// @Router /plans/{kind}/latest [get]
func (h *PlanHandler) Latest(c echo.Context) error {
	owner, _, err := h.owner(c)
	if err != nil {
		return err
	}
	kind, err := planKind(c)
	if err != nil {
		return err
	}

	plan, err := h.plans.Latest(c.Request().Context(), owner, kind)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if plan == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, plan)
}

// History godoc
// @Summary All plan versions for a kind, newest first
// @Tags plans
// @Produce json
// @Param kind path string true "training or diet"
// @Success 200 {array} model.Plan
// @Security BearerAuth
// @Router /plans/{kind}/history [get]
func (h *PlanHandler) History(c echo.Context) error {
	owner, _, err := h.owner(c)
	if err != nil {
		return err
	}
	kind, err := planKind(c)
	if err != nil {
		return err
	}

	plans, err := h.plans.History(c.Request().Context(), owner, kind)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, plans)
}

// Create godoc
// @Summary Generate and store a new plan version
// @Tags plans
// @Produce json
// @Param kind path string true "training or diet"
// @Success 201 {object} model.Plan
// @Failure 502 {object} errors.ErrorResponse
// @Failure 504 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /plans/{kind} [post]
func (h *PlanHandler) Create(c echo.Context) error {
	_, profile, err := h.owner(c)
	if err != nil {
		return err
	}
	kind, err := planKind(c)
	if err != nil {
		return err
	}
	if profile == nil {
		httpErr := apperrors.MapErrorToHTTP(apperrors.ErrProfileLoadFailed)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	plan, err := h.plans.CreateNew(c.Request().Context(), profile, kind)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, plan)
}

// Delete godoc
// @Summary Delete one plan version owned by the caller
// @Tags plans
// @Param id path string true "plan id"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /plans/{id} [delete]
func (h *PlanHandler) Delete(c echo.Context) error {
	owner, _, err := h.owner(c)
	if err != nil {
		return err
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}

	if err := h.plans.Delete(c.Request().Context(), owner, planID); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
