package repository

import (
	"context"
	"database/sql"
	"errors"

	"booking-router/core/logger"
	"booking-router/modules/account/entity"
)

func (r *AccountRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	query := `SELECT id, email, name, company_id, password, created_at, updated_at FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("AccountRepository:GetUserByEmail:Error", "error", err)
		return nil, err
	}
	return &user, nil
}

func (r *AccountRepository) CreateUser(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, name, company_id, password)
		VALUES (:email, :name, :company_id, :password)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, user)
	if err != nil {
		logger.Error("AccountRepository:CreateUser:Error", "error", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	}
	return rows.Err()
}
