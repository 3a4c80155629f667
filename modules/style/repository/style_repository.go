package repository

import (
	"context"

	"booking-router/core/database"
	"booking-router/core/logger"
	"booking-router/modules/style/entity"
)

type StyleRepositoryInterface interface {
	Upsert(ctx context.Context, style *entity.StyleConfiguration) (*entity.StyleConfiguration, error)
	List(ctx context.Context) ([]entity.StyleConfiguration, error)
}

type StyleRepository struct {
	db database.IDatabase
}

func NewStyleRepository(db database.IDatabase) *StyleRepository {
	return &StyleRepository{db: db}
}

var _ StyleRepositoryInterface = (*StyleRepository)(nil)

const styleColumns = `id, email, bg_color, font_size, created_at, updated_at`

// Upsert keys the configuration by email.
func (r *StyleRepository) Upsert(ctx context.Context, style *entity.StyleConfiguration) (*entity.StyleConfiguration, error) {
	var saved entity.StyleConfiguration
	query := `
		INSERT INTO style_configurations (email, bg_color, font_size)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			bg_color = EXCLUDED.bg_color,
			font_size = EXCLUDED.font_size,
			updated_at = NOW()
		RETURNING ` + styleColumns
	if err := r.db.GetContext(ctx, &saved, query, style.Email, style.BgColor, style.FontSize); err != nil {
		logger.Error("StyleRepository:Upsert:Error", "error", err, "email", style.Email)
		return nil, err
	}
	return &saved, nil
}

func (r *StyleRepository) List(ctx context.Context) ([]entity.StyleConfiguration, error) {
	styles := []entity.StyleConfiguration{}
	if err := r.db.SelectContext(ctx, &styles, `SELECT `+styleColumns+` FROM style_configurations ORDER BY created_at`); err != nil {
		logger.Error("StyleRepository:List:Error", "error", err)
		return nil, err
	}
	return styles, nil
}
