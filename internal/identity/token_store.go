package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plexusfit/fitplan/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	resetTokenKeyPrefix   = "reset_token:"
	confirmTokenKeyPrefix = "confirm_token:"
)

// ResetTokenExpiry bounds how long a password-reset token stays valid.
const ResetTokenExpiry = 30 * time.Minute

// ConfirmTokenExpiry bounds how long an email-confirmation token stays valid.
const ConfirmTokenExpiry = 24 * time.Hour

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uuid.UUID, email string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	StoreResetToken(ctx context.Context, tokenID string, userID uuid.UUID) error
	GetResetToken(ctx context.Context, tokenID string) (uuid.UUID, error)
	DeleteResetToken(ctx context.Context, tokenID string) error
	StoreConfirmToken(ctx context.Context, tokenID string, userID uuid.UUID) error
	GetConfirmToken(ctx context.Context, tokenID string) (uuid.UUID, error)
	DeleteConfirmToken(ctx context.Context, tokenID string) error
}

// TokenStore handles storage and retrieval of tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

type refreshTokenData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenData{UserID: userID.String(), Email: email})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}
	return s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl)
}

// GetRefreshToken retrieves refresh token data from Redis.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	data, err := s.cache.Get(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return uuid.Nil, "", fmt.Errorf("refresh token not found")
	}

	var td refreshTokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return uuid.Nil, "", fmt.Errorf("unmarshal token data: %w", err)
	}
	userID, err := uuid.Parse(td.UserID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid user id in token data: %w", err)
	}
	return userID, td.Email, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}

// StoreResetToken stores a password-reset token with a fixed TTL.
func (s *TokenStore) StoreResetToken(ctx context.Context, tokenID string, userID uuid.UUID) error {
	return s.cache.Set(ctx, resetTokenKeyPrefix+tokenID, []byte(userID.String()), ResetTokenExpiry)
}

// GetResetToken resolves a password-reset token to its user.
func (s *TokenStore) GetResetToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	data, err := s.cache.Get(ctx, resetTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return uuid.Nil, fmt.Errorf("reset token not found")
	}
	return uuid.Parse(string(data))
}

// DeleteResetToken removes a redeemed password-reset token.
func (s *TokenStore) DeleteResetToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, resetTokenKeyPrefix+tokenID)
}

// StoreConfirmToken stores an email-confirmation token with a fixed TTL.
func (s *TokenStore) StoreConfirmToken(ctx context.Context, tokenID string, userID uuid.UUID) error {
	return s.cache.Set(ctx, confirmTokenKeyPrefix+tokenID, []byte(userID.String()), ConfirmTokenExpiry)
}

// GetConfirmToken resolves an email-confirmation token to its user.
func (s *TokenStore) GetConfirmToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	data, err := s.cache.Get(ctx, confirmTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return uuid.Nil, fmt.Errorf("confirm token not found")
	}
	return uuid.Parse(string(data))
}

// DeleteConfirmToken removes a redeemed email-confirmation token.
func (s *TokenStore) DeleteConfirmToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, confirmTokenKeyPrefix+tokenID)
}
