package service

import (
	"context"
	stdErrors "errors"
	"strings"

	"booking-router/core/cache"
	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/modules/utm/dto"
	"booking-router/modules/utm/entity"
	"booking-router/modules/utm/repository"

	"github.com/google/uuid"
)

type UTMService interface {
	Create(ctx context.Context, req *dto.UTMRequest) (*entity.UTMParameter, *errors.AppError)
	List(ctx context.Context) ([]entity.UTMParameter, *errors.AppError)
	Get(ctx context.Context, id string) (*entity.UTMParameter, *errors.AppError)
	Update(ctx context.Context, id string, req *dto.UTMRequest) (*entity.UTMParameter, *errors.AppError)
	Delete(ctx context.Context, id string) *errors.AppError
	LookupName(ctx context.Context, id string) (string, error)
}

type utmService struct {
	repo  repository.UTMRepositoryInterface
	cache cache.Cache
}

func NewUTMService(repo repository.UTMRepositoryInterface, c cache.Cache) UTMService {
	return &utmService{repo: repo, cache: c}
}

func parseID(id string) (uuid.UUID, *errors.AppError) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid UTM parameter id", err)
	}
	return parsed, nil
}

func (s *utmService) Create(ctx context.Context, req *dto.UTMRequest) (*entity.UTMParameter, *errors.AppError) {
	utm, err := s.repo.Create(ctx, strings.TrimSpace(req.UTMParameter))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to create UTM parameter", err)
	}
	logger.Info("UTMService:Create:Success", "id", utm.ID, "utm_parameter", utm.UTMParameter)
	return utm, nil
}

func (s *utmService) List(ctx context.Context) ([]entity.UTMParameter, *errors.AppError) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch UTM parameters", err)
	}
	return items, nil
}

func (s *utmService) Get(ctx context.Context, id string) (*entity.UTMParameter, *errors.AppError) {
	utmID, appErr := parseID(id)
	if appErr != nil {
		return nil, appErr
	}
	utm, err := s.repo.GetByID(ctx, utmID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch UTM parameter", err)
	}
	if utm == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "UTM parameter not found", nil)
	}
	return utm, nil
}

func (s *utmService) Update(ctx context.Context, id string, req *dto.UTMRequest) (*entity.UTMParameter, *errors.AppError) {
	utmID, appErr := parseID(id)
	if appErr != nil {
		return nil, appErr
	}
	utm, err := s.repo.Update(ctx, utmID, strings.TrimSpace(req.UTMParameter))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to update UTM parameter", err)
	}
	if utm == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "UTM parameter not found", nil)
	}
	s.forget(ctx, utmID.String())
	return utm, nil
}

func (s *utmService) Delete(ctx context.Context, id string) *errors.AppError {
	utmID, appErr := parseID(id)
	if appErr != nil {
		return appErr
	}
	deleted, err := s.repo.Delete(ctx, utmID)
	if err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Failed to delete UTM parameter", err)
	}
	if deleted == 0 {
		return errors.NewAppError(errors.ErrNotFound, "UTM parameter not found", nil)
	}
	s.forget(ctx, utmID.String())
	return nil
}

func (s *utmService) forget(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, constants.CachePrefixUTMName+id); err != nil {
		logger.Warn("UTMService:Forget:Error", "error", err, "id", id)
	}
}

// LookupName returns the parameter name for a UTM key id. Unknown ids give
// an empty name and no error.
func (s *utmService) LookupName(ctx context.Context, id string) (string, error) {
	key := constants.CachePrefixUTMName + id
	name, err := s.cache.Get(ctx, key)
	if err == nil {
		return name, nil
	}
	if !stdErrors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("UTMService:LookupName:CacheGet:Error", "error", err, "id", id)
	}

	utmID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", nil
	}
	utm, err := s.repo.GetByID(ctx, utmID)
	if err != nil {
		return "", err
	}
	if utm == nil {
		return "", nil
	}
	if err := s.cache.Set(ctx, key, utm.UTMParameter, constants.UTMNameCacheTTL); err != nil {
		logger.Warn("UTMService:LookupName:CacheSet:Error", "error", err, "id", id)
	}
	return utm.UTMParameter, nil
}
