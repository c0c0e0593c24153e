package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/repository"
)

const bcryptCost = 10

// jwtProvider is the built-in identity provider: bcrypt credentials in the
// auth_users table, HS256 access/refresh tokens, refresh tokens revocable
// through the token store. It keeps the session of the current sign-in so
// that GetSession can restore it across core restarts within the process.
type jwtProvider struct {
	users  repository.AuthUserRepository
	jwt    *JWTService
	tokens TokenStoreInterface
	log    *zap.Logger

	mu      sync.Mutex
	current *model.Session
	handler func(Event)
}

// NewJWTProvider creates the built-in provider.
func NewJWTProvider(users repository.AuthUserRepository, jwtService *JWTService, tokens TokenStoreInterface, log *zap.Logger) Provider {
	return &jwtProvider{
		users:  users,
		jwt:    jwtService,
		tokens: tokens,
		log:    log,
	}
}

// SignInWithPassword authenticates and issues a fresh session.
func (p *jwtProvider) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	sess, err := p.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	p.setCurrent(sess)
	p.emit(Event{Type: EventSignedIn, Session: sess})
	return sess, nil
}

// SignUp registers credentials. It never leaves a session active: email
// confirmation has to happen before the first sign-in.
func (p *jwtProvider) SignUp(ctx context.Context, email, password string) error {
	existing, err := p.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return ErrUserExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check user existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &model.AuthUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := p.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if err := p.issueConfirmToken(ctx, user); err != nil {
		p.log.Warn("issue confirmation token", zap.Error(err))
	}
	return nil
}

// SignOut revokes the current refresh token and drops the session.
func (p *jwtProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	sess := p.current
	p.current = nil
	p.mu.Unlock()

	if sess != nil && sess.RefreshToken != "" {
		if tokenID, err := p.jwt.ExtractTokenID(sess.RefreshToken); err == nil {
			if err := p.tokens.DeleteRefreshToken(ctx, tokenID); err != nil {
				p.log.Warn("revoke refresh token", zap.Error(err))
			}
		}
	}
	p.emit(Event{Type: EventSignedOut})
	return nil
}

// GetSession restores the current session, refreshing the access token when
// it has expired and the refresh token is still honored by the store.
func (p *jwtProvider) GetSession(ctx context.Context) (*model.Session, error) {
	p.mu.Lock()
	sess := p.current
	p.mu.Unlock()

	if sess == nil {
		return nil, ErrNoActiveSession
	}
	if !sess.Expired(time.Now()) {
		return sess, nil
	}

	refreshed, err := p.refresh(ctx, sess)
	if err != nil {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	p.setCurrent(refreshed)
	p.emit(Event{Type: EventTokenRefreshed, Session: refreshed})
	return refreshed, nil
}

// OnSessionChange registers the single change handler for the process.
func (p *jwtProvider) OnSessionChange(handler func(Event)) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handler != nil {
		return nil, errors.New("identity: session-change handler already registered")
	}
	p.handler = handler
	return func() {
		p.mu.Lock()
		p.handler = nil
		p.mu.Unlock()
	}, nil
}

// ResendConfirmation issues a fresh confirmation token for a known,
// still-unconfirmed address. The built-in provider has no mailer; the token
// is logged and delivery is the deployment's concern.
func (p *jwtProvider) ResendConfirmation(ctx context.Context, email string) error {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		// Do not leak which emails exist.
		return nil
	}
	if user.Confirmed() {
		return nil
	}
	if err := p.issueConfirmToken(ctx, user); err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}
	return nil
}

// ConfirmEmail redeems a confirmation token and marks the email confirmed.
func (p *jwtProvider) ConfirmEmail(ctx context.Context, token string) error {
	userID, err := p.tokens.GetConfirmToken(ctx, token)
	if err != nil {
		return ErrTokenInvalid
	}
	if err := p.users.MarkConfirmed(ctx, userID); err != nil {
		return fmt.Errorf("mark confirmed: %w", err)
	}
	if err := p.tokens.DeleteConfirmToken(ctx, token); err != nil {
		p.log.Warn("delete redeemed confirm token", zap.Error(err))
	}
	p.log.Info("email confirmed", zap.String("user", userID.String()))
	return nil
}

// UpdatePassword replaces the user's password hash.
func (p *jwtProvider) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.users.UpdatePasswordHash(ctx, userID, string(hash))
}

// ResetPasswordRequest issues a short-lived reset token for a known email.
func (p *jwtProvider) ResetPasswordRequest(ctx context.Context, email string) error {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		// Same response for unknown emails.
		return nil
	}
	tokenID := uuid.New().String()
	if err := p.tokens.StoreResetToken(ctx, tokenID, user.ID); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	// No mailer; the deployment picks the token up from the log stream.
	p.log.Info("password reset requested",
		zap.String("email", email),
		zap.String("reset_token", tokenID))
	return nil
}

// ResetPassword redeems a reset token and replaces the password. The token
// dies on redemption.
func (p *jwtProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := p.tokens.GetResetToken(ctx, token)
	if err != nil {
		return ErrTokenInvalid
	}
	if err := p.UpdatePassword(ctx, userID, newPassword); err != nil {
		return err
	}
	if err := p.tokens.DeleteResetToken(ctx, token); err != nil {
		p.log.Warn("delete redeemed reset token", zap.Error(err))
	}
	p.log.Info("password reset completed", zap.String("user", userID.String()))
	return nil
}

func (p *jwtProvider) issueConfirmToken(ctx context.Context, user *model.AuthUser) error {
	tokenID := uuid.New().String()
	if err := p.tokens.StoreConfirmToken(ctx, tokenID, user.ID); err != nil {
		return err
	}
	p.log.Info("confirmation token issued",
		zap.String("email", user.Email),
		zap.String("confirm_token", tokenID))
	return nil
}

func (p *jwtProvider) issueSession(ctx context.Context, user *model.AuthUser) (*model.Session, error) {
	access, expiresAt, err := p.jwt.GenerateAccessToken(user.ID, user.Email, user.Confirmed())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refresh, err := p.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := p.tokens.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.Session{
		UserID:         user.ID,
		Email:          user.Email,
		EmailConfirmed: user.Confirmed(),
		ExpiresAt:      expiresAt,
		AccessToken:    access,
		RefreshToken:   refresh,
	}, nil
}

func (p *jwtProvider) refresh(ctx context.Context, sess *model.Session) (*model.Session, error) {
	tokenID, err := p.jwt.ExtractTokenID(sess.RefreshToken)
	if err != nil {
		return nil, err
	}
	userID, _, err := p.tokens.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Rotate: the old refresh token dies with the new issue.
	if err := p.tokens.DeleteRefreshToken(ctx, tokenID); err != nil {
		p.log.Warn("delete rotated refresh token", zap.Error(err))
	}
	return p.issueSession(ctx, user)
}

func (p *jwtProvider) setCurrent(sess *model.Session) {
	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()
}

func (p *jwtProvider) emit(evt Event) {
	p.mu.Lock()
	handler := p.handler
	p.mu.Unlock()
	if handler != nil {
		handler(evt)
	}
}
