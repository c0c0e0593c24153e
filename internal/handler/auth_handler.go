package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/identity"
	"github.com/plexusfit/fitplan/internal/session"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	core     *session.Core
	provider identity.Provider
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(core *session.Core, provider identity.Provider) *AuthHandler {
	return &AuthHandler{core: core, provider: provider}
}

// SignUpRequest represents a registration request.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignInRequest represents a sign-in request.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest carries just an email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdatePasswordRequest carries the replacement password.
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ConfirmEmailRequest carries an email-confirmation token.
type ConfirmEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// ResetPasswordCompleteRequest redeems a reset token for a new password.
type ResetPasswordCompleteRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// SessionResponse is the authenticated session returned on sign-in.
type SessionResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Email        string    `json:"email"`
	UserID       string    `json:"user_id"`
	IsAdmin      bool      `json:"is_admin"`
}

// SignUp godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Registration data"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.core.SignUp(c.Request().Context(), req.Email, req.Password); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "registered; confirm your email before signing in",
	})
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.core.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	state := h.core.Snapshot()
	return c.JSON(http.StatusOK, SessionResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		Email:        sess.Email,
		UserID:       sess.UserID.String(),
		IsAdmin:      state.IsAdmin,
	})
}

// SignOut godoc
// @Summary Sign out the current session
// @Tags auth
// @Success 204
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	h.core.SignOut(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// ResendConfirmation godoc
// @Summary Resend the confirmation email
// @Tags auth
// @Accept json
// @Param request body EmailRequest true "Email"
// @Success 202
// @Router /auth/resend-confirmation [post]
func (h *AuthHandler) ResendConfirmation(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provider.ResendConfirmation(c.Request().Context(), req.Email); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusAccepted)
}

// ConfirmEmail godoc
// @Summary Confirm an email address with the emailed token
// @Tags auth
// @Accept json
// @Param request body ConfirmEmailRequest true "Confirmation token"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/confirm [post]
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	var req ConfirmEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provider.ConfirmEmail(c.Request().Context(), req.Token); err != nil {
		if errors.Is(err, identity.ErrTokenInvalid) {
			err = apperrors.ErrInvalidToken
		}
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPasswordRequest godoc
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Param request body EmailRequest true "Email"
// @Success 202
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPasswordRequest(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provider.ResetPasswordRequest(c.Request().Context(), req.Email); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusAccepted)
}

// ResetPasswordComplete godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Param request body ResetPasswordCompleteRequest true "Reset token and new password"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/reset-password/complete [post]
func (h *AuthHandler) ResetPasswordComplete(c echo.Context) error {
	var req ResetPasswordCompleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provider.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, identity.ErrTokenInvalid) {
			err = apperrors.ErrInvalidToken
		}
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdatePassword godoc
// @Summary Change the authenticated user's password
// @Tags auth
// @Accept json
// @Param request body UpdatePasswordRequest true "New password"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /auth/password [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	state := h.core.Snapshot()
	if state.Session == nil {
		httpErr := apperrors.MapErrorToHTTP(apperrors.ErrNoSession)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if err := h.provider.UpdatePassword(c.Request().Context(), state.Session.UserID, req.NewPassword); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
