package service

import (
	"context"
	"encoding/json"
	"strings"

	"booking-router/core/cache"
	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/modules/reference/entity"
	"booking-router/modules/reference/repository"
)

type ReferenceService interface {
	ListStates(ctx context.Context) ([]entity.State, *errors.AppError)
	ListTimezones(ctx context.Context) ([]entity.Timezone, *errors.AppError)
	ResolveStateIDs(ctx context.Context, state string) ([]string, error)
}

type referenceService struct {
	repo  repository.ReferenceRepositoryInterface
	cache cache.Cache
}

func NewReferenceService(repo repository.ReferenceRepositoryInterface, c cache.Cache) ReferenceService {
	return &referenceService{repo: repo, cache: c}
}

// ListStates serves the state list from cache, loading it on a miss.
func (s *referenceService) ListStates(ctx context.Context) ([]entity.State, *errors.AppError) {
	if raw, err := s.cache.Get(ctx, constants.CacheKeyStates); err == nil {
		var states []entity.State
		if json.Unmarshal([]byte(raw), &states) == nil {
			return states, nil
		}
	}

	states, err := s.repo.ListStates(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch states", err)
	}
	if raw, err := json.Marshal(states); err == nil {
		if err := s.cache.Set(ctx, constants.CacheKeyStates, string(raw), constants.StatesCacheTTL); err != nil {
			logger.Warn("ReferenceService:ListStates:CacheSet:Error", "error", err)
		}
	}
	return states, nil
}

func (s *referenceService) ListTimezones(ctx context.Context) ([]entity.Timezone, *errors.AppError) {
	zones, err := s.repo.ListTimezones(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch timezones", err)
	}
	return zones, nil
}

// ResolveStateIDs returns the ids of the states named by state, either by
// full name or abbreviation.
func (s *referenceService) ResolveStateIDs(ctx context.Context, state string) ([]string, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return []string{}, nil
	}
	return s.repo.FindStateIDs(ctx, state)
}
