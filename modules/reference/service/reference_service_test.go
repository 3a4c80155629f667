package service

import (
	"context"
	"testing"

	"booking-router/core/cache"
	"booking-router/modules/reference/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	states     []entity.State
	stateCalls int
	lastQuery  string
}

func (r *fakeRepo) ListStates(_ context.Context) ([]entity.State, error) {
	r.stateCalls++
	return r.states, nil
}

func (r *fakeRepo) ListTimezones(_ context.Context) ([]entity.Timezone, error) {
	return []entity.Timezone{{ID: 1, Timezone: "America/New_York"}}, nil
}

func (r *fakeRepo) FindStateIDs(_ context.Context, state string) ([]string, error) {
	r.lastQuery = state
	ids := []string{}
	for _, s := range r.states {
		if s.State == state || s.Abbreviation == state {
			ids = append(ids, s.ID.String())
		}
	}
	return ids, nil
}

func TestListStates_ServedFromCacheAfterFirstLoad(t *testing.T) {
	tx := entity.State{ID: uuid.New(), State: "Texas", Abbreviation: "TX"}
	repo := &fakeRepo{states: []entity.State{tx}}
	svc := NewReferenceService(repo, cache.NewMemoryCache())

	first, appErr := svc.ListStates(context.Background())
	require.Nil(t, appErr)
	second, appErr := svc.ListStates(context.Background())
	require.Nil(t, appErr)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.stateCalls)
}

func TestResolveStateIDs(t *testing.T) {
	tx := entity.State{ID: uuid.New(), State: "Texas", Abbreviation: "TX"}
	repo := &fakeRepo{states: []entity.State{tx}}
	svc := NewReferenceService(repo, cache.NewMemoryCache())

	ids, err := svc.ResolveStateIDs(context.Background(), " TX ")
	require.NoError(t, err)
	assert.Equal(t, []string{tx.ID.String()}, ids)
	assert.Equal(t, "TX", repo.lastQuery)

	ids, err = svc.ResolveStateIDs(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
