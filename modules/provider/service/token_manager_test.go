package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"booking-router/core/cache"
	"booking-router/core/constants"
	coreEntity "booking-router/core/entity"
	"booking-router/core/errors"
	accountEntity "booking-router/modules/account/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenStore struct {
	mu      sync.Mutex
	updates int
	fail    bool
}

func (s *fakeTokenStore) UpdateTokens(_ context.Context, authID uuid.UUID, accessToken, refreshToken string, expiresIn int64) (*accountEntity.ProviderAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, fmt.Errorf("connection refused")
	}
	s.updates++
	return &accountEntity.ProviderAuth{
		BaseEntity:   coreEntity.BaseEntity{ID: authID, UpdatedAt: time.Now()},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

type fakeRefresher struct {
	result *TokenSet
	err    error
	calls  int
}

func (r *fakeRefresher) Refresh(context.Context, *accountEntity.ProviderAuth) (*TokenSet, error) {
	r.calls++
	return r.result, r.err
}

func expiredAuth() *accountEntity.ProviderAuth {
	return &accountEntity.ProviderAuth{
		BaseEntity:   coreEntity.BaseEntity{ID: uuid.New(), UpdatedAt: time.Now().Add(-2 * time.Hour)},
		Source:       constants.SourceGHL,
		AccessToken:  "stale",
		RefreshToken: "rt-1",
		ExpiresIn:    3600,
	}
}

func TestIsTokenExpired(t *testing.T) {
	issued := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		expiresIn int64
		now       time.Time
		want      bool
	}{
		{"fresh", 3600, issued.Add(59 * time.Minute), false},
		{"exactly at expiry", 3600, issued.Add(time.Hour), true},
		{"past expiry", 3600, issued.Add(2 * time.Hour), true},
		{"never expires", 0, issued.Add(24 * 365 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &accountEntity.ProviderAuth{BaseEntity: coreEntity.BaseEntity{UpdatedAt: issued}, ExpiresIn: tt.expiresIn}
			assert.Equal(t, tt.want, IsTokenExpired(auth, tt.now))
		})
	}
}

func TestTokenManager_FreshTokenSkipsRefresh(t *testing.T) {
	store := &fakeTokenStore{}
	refresher := &fakeRefresher{}
	m := NewTokenManager(store, cache.NewMemoryCache(), time.Second)
	m.Register(constants.SourceGHL, refresher)

	auth := expiredAuth()
	auth.UpdatedAt = time.Now()
	token, err := m.AccessToken(context.Background(), auth)
	require.NoError(t, err)
	assert.Equal(t, "stale", token)
	assert.Zero(t, refresher.calls)
}

func TestTokenManager_RefreshesAndPersists(t *testing.T) {
	store := &fakeTokenStore{}
	refresher := &fakeRefresher{result: &TokenSet{AccessToken: "fresh", ExpiresIn: 86400}}
	c := cache.NewMemoryCache()
	m := NewTokenManager(store, c, time.Second)
	m.Register(constants.SourceGHL, refresher)

	auth := expiredAuth()
	token, err := m.AccessToken(context.Background(), auth)
	require.NoError(t, err)

	assert.Equal(t, "fresh", token)
	// An empty refresh token in the grant keeps the stored one.
	assert.Equal(t, "rt-1", auth.RefreshToken)
	assert.Equal(t, int64(86400), auth.ExpiresIn)
	assert.False(t, IsTokenExpired(auth, time.Now()))
	assert.Equal(t, 1, store.updates)

	_, err = c.Get(context.Background(), constants.CachePrefixRefresh+auth.ID.String())
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestTokenManager_GrantFailureLeavesAuthUntouched(t *testing.T) {
	store := &fakeTokenStore{}
	refresher := &fakeRefresher{err: errors.NewAppError(errors.ErrProviderRequest, "invalid_grant", nil)}
	m := NewTokenManager(store, cache.NewMemoryCache(), time.Second)
	m.Register(constants.SourceGHL, refresher)

	auth := expiredAuth()
	_, err := m.AccessToken(context.Background(), auth)
	assert.True(t, errors.IsCode(err, errors.ErrProviderRequest))
	assert.Equal(t, "stale", auth.AccessToken)
	assert.Zero(t, store.updates)
}

func TestTokenManager_StoreFailure(t *testing.T) {
	store := &fakeTokenStore{fail: true}
	m := NewTokenManager(store, cache.NewMemoryCache(), time.Second)
	m.Register(constants.SourceGHL, &fakeRefresher{result: &TokenSet{AccessToken: "fresh"}})

	err := m.Refresh(context.Background(), expiredAuth())
	assert.True(t, errors.IsCode(err, errors.ErrDatabase))
}

func TestTokenManager_UnknownSource(t *testing.T) {
	m := NewTokenManager(&fakeTokenStore{}, cache.NewMemoryCache(), time.Second)

	auth := expiredAuth()
	auth.Source = constants.SourceOnceHub
	err := m.Refresh(context.Background(), auth)
	assert.True(t, errors.IsCode(err, errors.ErrProviderUnsupported))
}
