// Package identity defines the identity-provider contract consumed by the
// session core, and a built-in JWT implementation of it. The core only sees
// the Provider interface; provider-specific errors are mapped into the
// application taxonomy at the core boundary.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/plexusfit/fitplan/internal/model"
)

// Provider-level sentinel errors.
var (
	// ErrBadCredentials is returned when the provider rejects email/password.
	ErrBadCredentials = errors.New("identity: bad credentials")
	// ErrUserExists is returned on sign-up for an already registered email.
	ErrUserExists = errors.New("identity: user already exists")
	// ErrNoActiveSession is returned when no session can be restored.
	ErrNoActiveSession = errors.New("identity: no active session")
	// ErrTokenInvalid is returned when a confirmation or reset token is
	// unknown, expired, or already redeemed.
	ErrTokenInvalid = errors.New("identity: invalid or expired token")
)

// EventType identifies a session lifecycle transition.
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is delivered to the registered session-change handler. Session is
// nil for EventSignedOut.
type Event struct {
	Type    EventType
	Session *model.Session
}

// Provider is the external identity service contract.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	// GetSession restores the current session if one persists, refreshing an
	// expired access token when possible. Returns ErrNoActiveSession otherwise.
	GetSession(ctx context.Context) (*model.Session, error)
	// OnSessionChange registers the single long-lived change handler and
	// returns its teardown. Registering twice is an error.
	OnSessionChange(handler func(Event)) (func(), error)
	ResendConfirmation(ctx context.Context, email string) error
	// ConfirmEmail redeems a confirmation token issued at sign-up (or by
	// ResendConfirmation) and marks the email confirmed.
	ConfirmEmail(ctx context.Context, token string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
	ResetPasswordRequest(ctx context.Context, email string) error
	// ResetPassword redeems a reset token and replaces the password.
	ResetPassword(ctx context.Context, token, newPassword string) error
}
