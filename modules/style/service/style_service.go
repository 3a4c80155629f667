package service

import (
	"context"
	"strings"

	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/modules/style/dto"
	"booking-router/modules/style/entity"
	"booking-router/modules/style/repository"
)

type StyleService interface {
	Save(ctx context.Context, req *dto.StyleRequest) (*entity.StyleConfiguration, *errors.AppError)
	List(ctx context.Context) ([]entity.StyleConfiguration, *errors.AppError)
}

type styleService struct {
	repo repository.StyleRepositoryInterface
}

func NewStyleService(repo repository.StyleRepositoryInterface) StyleService {
	return &styleService{repo: repo}
}

func (s *styleService) Save(ctx context.Context, req *dto.StyleRequest) (*entity.StyleConfiguration, *errors.AppError) {
	saved, err := s.repo.Upsert(ctx, &entity.StyleConfiguration{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		BgColor:  req.BgColor,
		FontSize: req.FontSize,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to save style configuration", err)
	}
	logger.Info("StyleService:Save:Success", "email", saved.Email)
	return saved, nil
}

func (s *styleService) List(ctx context.Context) ([]entity.StyleConfiguration, *errors.AppError) {
	styles, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch style configurations", err)
	}
	return styles, nil
}
