package errors

import (
	"errors"
	"net/http"
)

// Auth errors surfaced by the session core.
var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotConfirmed is returned on sign-in when the email is unconfirmed.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	// ErrAccountInactive is returned when the profile has been deactivated.
	ErrAccountInactive = errors.New("account is not active")
	// ErrAlreadyRegistered is returned on sign-up for an existing email.
	ErrAlreadyRegistered = errors.New("user already registered")
	// ErrNoSession is returned for authenticated operations without a session.
	ErrNoSession = errors.New("no active session")
	// ErrProviderTimeout is returned when an identity-provider call exceeds its deadline.
	ErrProviderTimeout = errors.New("identity provider timed out")
	// ErrInvalidToken is returned when a confirmation or reset token is unknown or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Profile errors.
var (
	// ErrProfileLoadFailed is returned when the profile cannot be loaded.
	ErrProfileLoadFailed = errors.New("profile load failed")
	// ErrProfileWriteFailed is returned when the profile cannot be written.
	ErrProfileWriteFailed = errors.New("profile write failed")
)

// Generation errors.
var (
	// ErrMalformedResponse is returned when no valid payload can be extracted
	// from the generation service's response.
	ErrMalformedResponse = errors.New("malformed generation response")
	// ErrServiceUnavailable is returned when the generation service cannot be reached.
	ErrServiceUnavailable = errors.New("generation service unavailable")
	// ErrGenerationTimeout is returned when a generation call exceeds its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")
)

// Store errors.
var (
	// ErrStoreWriteFailed is returned when a plan version cannot be persisted.
	ErrStoreWriteFailed = errors.New("plan write failed")
	// ErrNotFound is returned when a plan does not exist or is not owned by the caller.
	ErrNotFound = errors.New("plan not found")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailNotConfirmed):
		return NewHTTPError(http.StatusForbidden, err.Error(), "EMAIL_NOT_CONFIRMED")
	case errors.Is(err, ErrAccountInactive):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_INACTIVE")
	case errors.Is(err, ErrAlreadyRegistered):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_REGISTERED")
	case errors.Is(err, ErrNoSession):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "NO_SESSION")
	case errors.Is(err, ErrProviderTimeout):
		return NewHTTPError(http.StatusGatewayTimeout, err.Error(), "PROVIDER_TIMEOUT")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrProfileLoadFailed):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "PROFILE_LOAD_FAILED")
	case errors.Is(err, ErrProfileWriteFailed):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "PROFILE_WRITE_FAILED")
	case errors.Is(err, ErrMalformedResponse):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "MALFORMED_RESPONSE")
	case errors.Is(err, ErrServiceUnavailable):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "SERVICE_UNAVAILABLE")
	case errors.Is(err, ErrGenerationTimeout):
		return NewHTTPError(http.StatusGatewayTimeout, err.Error(), "GENERATION_TIMEOUT")
	case errors.Is(err, ErrStoreWriteFailed):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "STORE_WRITE_FAILED")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
