package repository

import (
	"context"
	"database/sql"
	"errors"

	"booking-router/core/database"
	"booking-router/core/logger"
	"booking-router/modules/utm/entity"

	"github.com/google/uuid"
)

type UTMRepositoryInterface interface {
	Create(ctx context.Context, name string) (*entity.UTMParameter, error)
	List(ctx context.Context) ([]entity.UTMParameter, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.UTMParameter, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*entity.UTMParameter, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type UTMRepository struct {
	db database.IDatabase
}

func NewUTMRepository(db database.IDatabase) *UTMRepository {
	return &UTMRepository{db: db}
}

var _ UTMRepositoryInterface = (*UTMRepository)(nil)

func (r *UTMRepository) Create(ctx context.Context, name string) (*entity.UTMParameter, error) {
	var utm entity.UTMParameter
	query := `INSERT INTO utm_parameters (utm_parameter) VALUES ($1) RETURNING id, utm_parameter, created_at`
	if err := r.db.GetContext(ctx, &utm, query, name); err != nil {
		logger.Error("UTMRepository:Create:Error", "error", err)
		return nil, err
	}
	return &utm, nil
}

func (r *UTMRepository) List(ctx context.Context) ([]entity.UTMParameter, error) {
	items := []entity.UTMParameter{}
	query := `SELECT id, utm_parameter, created_at FROM utm_parameters ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		logger.Error("UTMRepository:List:Error", "error", err)
		return nil, err
	}
	return items, nil
}

// GetByID returns nil, nil when no row matches.
func (r *UTMRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.UTMParameter, error) {
	var utm entity.UTMParameter
	query := `SELECT id, utm_parameter, created_at FROM utm_parameters WHERE id = $1`
	if err := r.db.GetContext(ctx, &utm, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("UTMRepository:GetByID:Error", "error", err, "id", id)
		return nil, err
	}
	return &utm, nil
}

func (r *UTMRepository) Update(ctx context.Context, id uuid.UUID, name string) (*entity.UTMParameter, error) {
	var utm entity.UTMParameter
	query := `UPDATE utm_parameters SET utm_parameter = $2 WHERE id = $1 RETURNING id, utm_parameter, created_at`
	if err := r.db.GetContext(ctx, &utm, query, id, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("UTMRepository:Update:Error", "error", err, "id", id)
		return nil, err
	}
	return &utm, nil
}

func (r *UTMRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := r.db.SQLx().ExecContext(ctx, `DELETE FROM utm_parameters WHERE id = $1`, id)
	if err != nil {
		logger.Error("UTMRepository:Delete:Error", "error", err, "id", id)
		return 0, err
	}
	return res.RowsAffected()
}
