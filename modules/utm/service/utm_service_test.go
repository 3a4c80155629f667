package service

import (
	"context"
	"testing"

	"booking-router/core/cache"
	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/modules/utm/dto"
	"booking-router/modules/utm/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items  map[uuid.UUID]*entity.UTMParameter
	lookup int
}

func newFakeRepo(items ...*entity.UTMParameter) *fakeRepo {
	r := &fakeRepo{items: map[uuid.UUID]*entity.UTMParameter{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, name string) (*entity.UTMParameter, error) {
	utm := &entity.UTMParameter{ID: uuid.New(), UTMParameter: name}
	r.items[utm.ID] = utm
	return utm, nil
}

func (r *fakeRepo) List(_ context.Context) ([]entity.UTMParameter, error) {
	out := []entity.UTMParameter{}
	for _, it := range r.items {
		out = append(out, *it)
	}
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.UTMParameter, error) {
	r.lookup++
	return r.items[id], nil
}

func (r *fakeRepo) Update(_ context.Context, id uuid.UUID, name string) (*entity.UTMParameter, error) {
	utm, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	utm.UTMParameter = name
	return utm, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

func TestCreate_TrimsName(t *testing.T) {
	svc := NewUTMService(newFakeRepo(), cache.NewMemoryCache())

	utm, appErr := svc.Create(context.Background(), &dto.UTMRequest{UTMParameter: "  utm_source "})
	require.Nil(t, appErr)
	assert.Equal(t, "utm_source", utm.UTMParameter)
}

func TestGet_InvalidAndMissingID(t *testing.T) {
	svc := NewUTMService(newFakeRepo(), cache.NewMemoryCache())

	_, appErr := svc.Get(context.Background(), "not-a-uuid")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)

	_, appErr = svc.Get(context.Background(), uuid.NewString())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestLookupName_CachesResult(t *testing.T) {
	utm := &entity.UTMParameter{ID: uuid.New(), UTMParameter: "utm_campaign"}
	repo := newFakeRepo(utm)
	c := cache.NewMemoryCache()
	svc := NewUTMService(repo, c)

	name, err := svc.LookupName(context.Background(), utm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "utm_campaign", name)

	name, err = svc.LookupName(context.Background(), utm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "utm_campaign", name)
	assert.Equal(t, 1, repo.lookup)

	cached, err := c.Get(context.Background(), constants.CachePrefixUTMName+utm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "utm_campaign", cached)
}

func TestLookupName_UnknownGivesEmpty(t *testing.T) {
	svc := NewUTMService(newFakeRepo(), cache.NewMemoryCache())

	name, err := svc.LookupName(context.Background(), "garbage")
	require.NoError(t, err)
	assert.Empty(t, name)

	name, err = svc.LookupName(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestUpdate_InvalidatesCachedName(t *testing.T) {
	utm := &entity.UTMParameter{ID: uuid.New(), UTMParameter: "utm_medium"}
	repo := newFakeRepo(utm)
	svc := NewUTMService(repo, cache.NewMemoryCache())
	ctx := context.Background()

	_, err := svc.LookupName(ctx, utm.ID.String())
	require.NoError(t, err)

	_, appErr := svc.Update(ctx, utm.ID.String(), &dto.UTMRequest{UTMParameter: "utm_term"})
	require.Nil(t, appErr)

	name, err := svc.LookupName(ctx, utm.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "utm_term", name)
	assert.Equal(t, 2, repo.lookup)
}

func TestDelete_Missing(t *testing.T) {
	svc := NewUTMService(newFakeRepo(), cache.NewMemoryCache())

	appErr := svc.Delete(context.Background(), uuid.NewString())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
