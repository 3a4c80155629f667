package service

import (
	"context"
	"time"

	"booking-router/core/cache"
	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	accountEntity "booking-router/modules/account/entity"

	"github.com/google/uuid"
)

// TokenSet is the result of a refresh-token grant.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Refresher performs one provider's refresh-token grant.
type Refresher interface {
	Refresh(ctx context.Context, auth *accountEntity.ProviderAuth) (*TokenSet, error)
}

type TokenStore interface {
	UpdateTokens(ctx context.Context, authID uuid.UUID, accessToken, refreshToken string, expiresIn int64) (*accountEntity.ProviderAuth, error)
}

// IsTokenExpired applies the stored-token rule: a token issued at updatedAt
// is stale once now reaches updatedAt + expiresIn. Non-positive lifetimes
// never expire.
func IsTokenExpired(auth *accountEntity.ProviderAuth, now time.Time) bool {
	if auth.ExpiresIn <= 0 {
		return false
	}
	return !now.Before(auth.UpdatedAt.Add(time.Duration(auth.ExpiresIn) * time.Second))
}

// TokenManager refreshes expired provider tokens inline. A short cache lock
// keeps concurrent requests for the same auth from all refreshing; a request
// that loses the race still refreshes, since a second refresh is harmless.
type TokenManager struct {
	store      TokenStore
	cache      cache.Cache
	refreshers map[string]Refresher
	lockTTL    time.Duration
	now        func() time.Time
}

func NewTokenManager(store TokenStore, c cache.Cache, lockTTL time.Duration) *TokenManager {
	return &TokenManager{
		store:      store,
		cache:      c,
		refreshers: map[string]Refresher{},
		lockTTL:    lockTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) Register(source string, r Refresher) {
	m.refreshers[source] = r
}

func (m *TokenManager) AccessToken(ctx context.Context, auth *accountEntity.ProviderAuth) (string, error) {
	if auth == nil {
		return "", errors.NewAppError(errors.ErrNotFound, "provider auth not found", nil)
	}
	if !IsTokenExpired(auth, m.now()) {
		return auth.AccessToken, nil
	}
	if err := m.Refresh(ctx, auth); err != nil {
		return "", err
	}
	return auth.AccessToken, nil
}

// Refresh runs the refresh grant and persists the new tokens, updating auth
// in place.
func (m *TokenManager) Refresh(ctx context.Context, auth *accountEntity.ProviderAuth) error {
	refresher, ok := m.refreshers[auth.Source]
	if !ok {
		return errors.NewAppError(errors.ErrProviderUnsupported, "token refresh not supported for "+auth.Source, nil)
	}

	lockKey := constants.CachePrefixRefresh + auth.ID.String()
	acquired, err := m.cache.SetNX(ctx, lockKey, "1", m.lockTTL)
	if err != nil {
		logger.Warn("TokenManager:Refresh:Lock:Error", "error", err, "auth_id", auth.ID)
	}
	if acquired {
		defer func() {
			if delErr := m.cache.Del(context.WithoutCancel(ctx), lockKey); delErr != nil {
				logger.Warn("TokenManager:Refresh:Unlock:Error", "error", delErr, "auth_id", auth.ID)
			}
		}()
	} else {
		logger.Info("TokenManager:Refresh:Concurrent", "auth_id", auth.ID, "source", auth.Source)
	}

	tokens, err := refresher.Refresh(ctx, auth)
	if err != nil {
		logger.Error("TokenManager:Refresh:Grant:Error", "error", err, "auth_id", auth.ID, "source", auth.Source)
		return err
	}

	if tokens.RefreshToken == "" {
		tokens.RefreshToken = auth.RefreshToken
	}
	updated, err := m.store.UpdateTokens(ctx, auth.ID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn)
	if err != nil {
		return errors.NewAppError(errors.ErrDatabase, "failed to store refreshed token", err)
	}
	if updated == nil {
		return errors.NewAppError(errors.ErrNotFound, "provider auth not found", nil)
	}

	auth.AccessToken = updated.AccessToken
	auth.RefreshToken = updated.RefreshToken
	auth.ExpiresIn = updated.ExpiresIn
	auth.UpdatedAt = updated.UpdatedAt
	logger.Info("TokenManager:Refresh:Success", "auth_id", auth.ID, "source", auth.Source)
	return nil
}
