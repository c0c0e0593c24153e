package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/service"
)

// AdminHandler backs the administrator user-management table.
type AdminHandler struct {
	admin service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// SetActiveRequest flips a profile's active flag.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ListUsers godoc
// @Summary List all profiles
// @Tags admin
// @Produce json
// @Success 200 {array} model.Profile
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	profiles, err := h.admin.ListProfiles(c.Request().Context())
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, profiles)
}

// SetActive godoc
// @Summary Activate or deactivate a profile
// @Description Deactivation is a soft flag; the owner's session is torn
// @Description down by their session core when it observes the change.
// @Tags admin
// @Accept json
// @Param id path string true "profile id"
// @Param request body SetActiveRequest true "New active flag"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/active [patch]
func (h *AdminHandler) SetActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile id")
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.admin.SetActive(c.Request().Context(), id, *req.Active); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
