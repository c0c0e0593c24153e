package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexusfit/fitplan/internal/identity"
	"github.com/plexusfit/fitplan/internal/model"
)

// stubProvider records token-flow calls; everything else is inert.
type stubProvider struct {
	confirmErr     error
	resetErr       error
	confirmedToken string
	resetToken     string
	resetPassword  string
}

func (s *stubProvider) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	return nil, identity.ErrBadCredentials
}
func (s *stubProvider) SignUp(ctx context.Context, email, password string) error { return nil }
func (s *stubProvider) SignOut(ctx context.Context) error                        { return nil }
func (s *stubProvider) GetSession(ctx context.Context) (*model.Session, error) {
	return nil, identity.ErrNoActiveSession
}
func (s *stubProvider) OnSessionChange(handler func(identity.Event)) (func(), error) {
	return func() {}, nil
}
func (s *stubProvider) ResendConfirmation(ctx context.Context, email string) error { return nil }
func (s *stubProvider) ConfirmEmail(ctx context.Context, token string) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmedToken = token
	return nil
}
func (s *stubProvider) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	return nil
}
func (s *stubProvider) ResetPasswordRequest(ctx context.Context, email string) error { return nil }
func (s *stubProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	s.resetToken = token
	s.resetPassword = newPassword
	return nil
}

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

func jsonContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_ConfirmEmail(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		confirmErr error
		wantStatus int
	}{
		{name: "valid token", body: `{"token":"tok-1"}`, wantStatus: http.StatusNoContent},
		{name: "unknown token", body: `{"token":"tok-x"}`, confirmErr: identity.ErrTokenInvalid, wantStatus: http.StatusBadRequest},
		{name: "missing token", body: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{confirmErr: tt.confirmErr}
			h := NewAuthHandler(emptyCore(), provider)

			c, rec := jsonContext(t, tt.body)
			err := h.ConfirmEmail(c)

			if tt.wantStatus == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, http.StatusNoContent, rec.Code)
				assert.Equal(t, "tok-1", provider.confirmedToken)
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.Code)
		})
	}
}

func TestAuthHandler_ResetPasswordComplete(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		resetErr   error
		wantStatus int
	}{
		{name: "valid token", body: `{"token":"tok-1","new_password":"secret123"}`, wantStatus: http.StatusNoContent},
		{name: "unknown token", body: `{"token":"tok-x","new_password":"secret123"}`, resetErr: identity.ErrTokenInvalid, wantStatus: http.StatusBadRequest},
		{name: "password too short", body: `{"token":"tok-1","new_password":"abc"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{resetErr: tt.resetErr}
			h := NewAuthHandler(emptyCore(), provider)

			c, rec := jsonContext(t, tt.body)
			err := h.ResetPasswordComplete(c)

			if tt.wantStatus == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, http.StatusNoContent, rec.Code)
				assert.Equal(t, "tok-1", provider.resetToken)
				assert.Equal(t, "secret123", provider.resetPassword)
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.Code)
		})
	}
}
