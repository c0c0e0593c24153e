package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/session"
)

// ProfileHandler exposes the session core's state and profile operations.
type ProfileHandler struct {
	core *session.Core
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(core *session.Core) *ProfileHandler {
	return &ProfileHandler{core: core}
}

// StateResponse is the read-only snapshot served to consumers.
type StateResponse struct {
	Authenticated bool        `json:"authenticated"`
	Loading       bool        `json:"loading"`
	IsAdmin       bool        `json:"is_admin"`
	Email         string      `json:"email,omitempty"`
	Profile       interface{} `json:"profile,omitempty"`
}

// GetMe godoc
// @Summary Current session and profile snapshot
// @Tags profile
// @Produce json
// @Success 200 {object} StateResponse
// @Security BearerAuth
// @Router /me [get]
func (h *ProfileHandler) GetMe(c echo.Context) error {
	state := h.core.Snapshot()
	resp := StateResponse{
		Authenticated: state.Session != nil,
		Loading:       state.Loading,
		IsAdmin:       state.IsAdmin,
	}
	if state.Session != nil {
		resp.Email = state.Session.Email
	}
	if state.Profile != nil {
		resp.Profile = state.Profile
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Description Applies a partial edit. When a tracked biometric/preference
// @Description field changes, both plans regenerate in the background.
// @Tags profile
// @Accept json
// @Produce json
// @Param request body session.ProfileUpdate true "Partial profile"
// @Success 200 {object} model.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /me [put]
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	var upd session.ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	profile, err := h.core.UpdateProfile(c.Request().Context(), upd)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, profile)
}

// StashDraft godoc
// @Summary Stash a profile edit to apply after sign-in
// @Tags profile
// @Accept json
// @Success 202
// @Router /profile/draft [post]
func (h *ProfileHandler) StashDraft(c echo.Context) error {
	var upd session.ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	h.core.StashDraft(upd)
	return c.NoContent(http.StatusAccepted)
}
