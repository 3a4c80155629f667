package repository

import (
	"context"

	"booking-router/core/database"
	"booking-router/core/logger"
	"booking-router/modules/reference/entity"
)

type ReferenceRepositoryInterface interface {
	ListStates(ctx context.Context) ([]entity.State, error)
	ListTimezones(ctx context.Context) ([]entity.Timezone, error)
	FindStateIDs(ctx context.Context, state string) ([]string, error)
}

type ReferenceRepository struct {
	db database.IDatabase
}

func NewReferenceRepository(db database.IDatabase) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

var _ ReferenceRepositoryInterface = (*ReferenceRepository)(nil)

func (r *ReferenceRepository) ListStates(ctx context.Context) ([]entity.State, error) {
	states := []entity.State{}
	query := `SELECT id, state, state_abbreviation FROM states ORDER BY state`
	if err := r.db.SelectContext(ctx, &states, query); err != nil {
		logger.Error("ReferenceRepository:ListStates:Error", "error", err)
		return nil, err
	}
	return states, nil
}

func (r *ReferenceRepository) ListTimezones(ctx context.Context) ([]entity.Timezone, error) {
	zones := []entity.Timezone{}
	query := `SELECT id, timezone FROM timezones ORDER BY id`
	if err := r.db.SelectContext(ctx, &zones, query); err != nil {
		logger.Error("ReferenceRepository:ListTimezones:Error", "error", err)
		return nil, err
	}
	return zones, nil
}

// FindStateIDs matches a full state name or its abbreviation, ignoring case.
func (r *ReferenceRepository) FindStateIDs(ctx context.Context, state string) ([]string, error) {
	ids := []string{}
	query := `SELECT id::text FROM states WHERE state ILIKE $1 OR state_abbreviation ILIKE $1`
	if err := r.db.SelectContext(ctx, &ids, query, state); err != nil {
		logger.Error("ReferenceRepository:FindStateIDs:Error", "error", err, "state", state)
		return nil, err
	}
	return ids, nil
}
