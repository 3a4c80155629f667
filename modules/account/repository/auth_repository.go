package repository

import (
	"context"
	"database/sql"
	"errors"

	"booking-router/core/constants"
	"booking-router/core/logger"
	"booking-router/modules/account/entity"

	"github.com/google/uuid"
)

const authColumns = `id, source, account_type, native_id, company_id, access_token, refresh_token,
	expires_in, is_active, calendly_organization, created_at, updated_at`

// GetAuthByNativeID returns the location-level connection for a tenant.
func (r *AccountRepository) GetAuthByNativeID(ctx context.Context, nativeID string) (*entity.ProviderAuth, error) {
	var auth entity.ProviderAuth
	query := `SELECT ` + authColumns + ` FROM provider_auths
		WHERE native_id = $1 AND account_type = $2
		ORDER BY updated_at DESC LIMIT 1`
	err := r.db.GetContext(ctx, &auth, query, nativeID, constants.AccountTypeLocation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("AccountRepository:GetAuthByNativeID:Error", "error", err, "native_id", nativeID)
		return nil, err
	}
	return &auth, nil
}

func (r *AccountRepository) GetCompanyAuth(ctx context.Context, companyID string) (*entity.ProviderAuth, error) {
	var auth entity.ProviderAuth
	query := `SELECT ` + authColumns + ` FROM provider_auths
		WHERE company_id = $1 AND account_type = $2
		ORDER BY updated_at DESC LIMIT 1`
	err := r.db.GetContext(ctx, &auth, query, companyID, constants.AccountTypeCompany)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("AccountRepository:GetCompanyAuth:Error", "error", err, "company_id", companyID)
		return nil, err
	}
	return &auth, nil
}

// UpsertAuth stores a connection keyed by (source, account_type, native_id)
// and reports whether a new row was created.
func (r *AccountRepository) UpsertAuth(ctx context.Context, auth *entity.ProviderAuth) (bool, error) {
	query := `
		INSERT INTO provider_auths (source, account_type, native_id, company_id, access_token,
			refresh_token, expires_in, is_active, calendly_organization)
		VALUES (:source, :account_type, :native_id, :company_id, :access_token,
			:refresh_token, :expires_in, :is_active, :calendly_organization)
		ON CONFLICT (source, account_type, native_id) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_in = EXCLUDED.expires_in,
			is_active = EXCLUDED.is_active,
			calendly_organization = EXCLUDED.calendly_organization,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`
	rows, err := r.db.NamedQueryContext(ctx, query, auth)
	if err != nil {
		logger.Error("AccountRepository:UpsertAuth:Error", "error", err, "source", auth.Source, "native_id", auth.NativeID)
		return false, err
	}
	defer rows.Close()

	var inserted bool
	if rows.Next() {
		if err := rows.Scan(&auth.ID, &auth.CreatedAt, &auth.UpdatedAt, &inserted); err != nil {
			return false, err
		}
	}
	return inserted, rows.Err()
}

func (r *AccountRepository) UpdateTokens(ctx context.Context, authID uuid.UUID, accessToken, refreshToken string, expiresIn int64) (*entity.ProviderAuth, error) {
	var auth entity.ProviderAuth
	query := `
		UPDATE provider_auths SET
			access_token = $2,
			refresh_token = $3,
			expires_in = $4,
			is_active = TRUE,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + authColumns
	err := r.db.GetContext(ctx, &auth, query, authID, accessToken, refreshToken, expiresIn)
	if err != nil {
		logger.Error("AccountRepository:UpdateTokens:Error", "error", err, "auth_id", authID)
		return nil, err
	}
	return &auth, nil
}

func (r *AccountRepository) DeactivateByNativeID(ctx context.Context, nativeID string) (int64, error) {
	return r.deactivate(ctx, `UPDATE provider_auths SET is_active = FALSE, updated_at = NOW() WHERE native_id = $1`, nativeID)
}

func (r *AccountRepository) DeactivateByCompanyID(ctx context.Context, companyID string) (int64, error) {
	return r.deactivate(ctx, `UPDATE provider_auths SET is_active = FALSE, updated_at = NOW() WHERE company_id = $1`, companyID)
}

func (r *AccountRepository) deactivate(ctx context.Context, query string, id string) (int64, error) {
	res, err := r.db.SQLx().ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("AccountRepository:deactivate:Error", "error", err, "id", id)
		return 0, err
	}
	return res.RowsAffected()
}
