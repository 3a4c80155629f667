package repository

import (
	"context"
	"database/sql"
	"errors"

	"booking-router/core/logger"
	"booking-router/modules/account/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const accountColumns = `id, auth_id, native_id, company_id, name, email, phone, timezone, calendar_id,
	mirror_calendar_id, spend_amount, priority_score, states, asset_minimum, condition, redirect_url,
	custom_field_id, calendly_slug, calendly_scheduling_url, created_at, updated_at`

func (r *AccountRepository) GetAccountByNativeID(ctx context.Context, nativeID string) (*entity.Account, error) {
	var account entity.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE native_id = $1`
	err := r.db.GetContext(ctx, &account, query, nativeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("AccountRepository:GetAccountByNativeID:Error", "error", err, "native_id", nativeID)
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetAccountWithAuth(ctx context.Context, nativeID string) (*entity.AccountWithAuth, error) {
	accounts, err := r.ListAccountsWithAuthByNativeIDs(ctx, []string{nativeID})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

func (r *AccountRepository) ListAccountsWithAuth(ctx context.Context) ([]entity.AccountWithAuth, error) {
	var accounts []entity.Account
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		logger.Error("AccountRepository:ListAccountsWithAuth:Error", "error", err)
		return nil, err
	}
	return r.attachAuths(ctx, accounts)
}

func (r *AccountRepository) ListAccountsWithAuthByNativeIDs(ctx context.Context, nativeIDs []string) ([]entity.AccountWithAuth, error) {
	if len(nativeIDs) == 0 {
		return []entity.AccountWithAuth{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+accountColumns+` FROM accounts WHERE native_id IN (?)`, nativeIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.SQLx().Rebind(query)

	var accounts []entity.Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		logger.Error("AccountRepository:ListAccountsWithAuthByNativeIDs:Error", "error", err)
		return nil, err
	}
	return r.attachAuths(ctx, accounts)
}

func (r *AccountRepository) attachAuths(ctx context.Context, accounts []entity.Account) ([]entity.AccountWithAuth, error) {
	result := make([]entity.AccountWithAuth, 0, len(accounts))
	authIDs := make([]uuid.UUID, 0, len(accounts))
	for _, a := range accounts {
		if a.AuthID != nil {
			authIDs = append(authIDs, *a.AuthID)
		}
	}

	byID := map[uuid.UUID]*entity.ProviderAuth{}
	if len(authIDs) > 0 {
		query, args, err := sqlx.In(`SELECT `+authColumns+` FROM provider_auths WHERE id IN (?)`, authIDs)
		if err != nil {
			return nil, err
		}
		query = r.db.SQLx().Rebind(query)

		var auths []entity.ProviderAuth
		if err := r.db.SelectContext(ctx, &auths, query, args...); err != nil {
			logger.Error("AccountRepository:attachAuths:Error", "error", err)
			return nil, err
		}
		for i := range auths {
			byID[auths[i].ID] = &auths[i]
		}
	}

	for _, a := range accounts {
		joined := entity.AccountWithAuth{Account: a}
		if a.AuthID != nil {
			joined.Auth = byID[*a.AuthID]
		}
		result = append(result, joined)
	}
	return result, nil
}

// UpsertAccountProfile creates the account row for a new connection, or
// refreshes its provider-sourced profile fields. Targeting fields set through
// configuration are never touched here.
func (r *AccountRepository) UpsertAccountProfile(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO accounts (auth_id, native_id, company_id, name, email, phone, timezone,
			custom_field_id, calendly_slug, calendly_scheduling_url)
		VALUES (:auth_id, :native_id, :company_id, :name, :email, :phone, :timezone,
			:custom_field_id, :calendly_slug, :calendly_scheduling_url)
		ON CONFLICT (native_id) DO UPDATE SET
			auth_id = EXCLUDED.auth_id,
			company_id = EXCLUDED.company_id,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			timezone = EXCLUDED.timezone,
			custom_field_id = COALESCE(NULLIF(EXCLUDED.custom_field_id, ''), accounts.custom_field_id),
			calendly_slug = EXCLUDED.calendly_slug,
			calendly_scheduling_url = EXCLUDED.calendly_scheduling_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, account)
	if err != nil {
		logger.Error("AccountRepository:UpsertAccountProfile:Error", "error", err, "native_id", account.NativeID)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	}
	return rows.Err()
}

func (r *AccountRepository) UpdateConfiguration(ctx context.Context, u *ConfigurationUpdate) (*entity.Account, error) {
	var states any
	if u.States != nil {
		states = pq.StringArray(u.States)
	}

	query := `
		UPDATE accounts SET
			spend_amount = $2,
			calendar_id = $3,
			redirect_url = $4,
			mirror_calendar_id = COALESCE($5, mirror_calendar_id),
			phone = COALESCE($6, phone),
			states = COALESCE($7::text[], states),
			asset_minimum = COALESCE($8, asset_minimum),
			condition = COALESCE($9, condition),
			name = COALESCE($10, name),
			email = COALESCE($11, email),
			updated_at = NOW()
		WHERE native_id = $1
		RETURNING ` + accountColumns

	var account entity.Account
	err := r.db.GetContext(ctx, &account, query,
		u.NativeID, u.SpendAmount, u.CalendarID, u.RedirectURL, u.MirrorCalendarID,
		u.Phone, states, u.AssetMinimum, u.Condition, u.Name, u.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("AccountRepository:UpdateConfiguration:Error", "error", err, "native_id", u.NativeID)
		return nil, err
	}
	return &account, nil
}

// DeleteAccountCascade removes the account, its provider auth and its
// mirrored calendars (open hours, members and cached slots follow by FK).
func (r *AccountRepository) DeleteAccountCascade(ctx context.Context, nativeID string) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		steps := []struct {
			name  string
			query string
		}{
			{"calendars", `DELETE FROM calendars WHERE location_id = $1`},
			{"booked_slots", `DELETE FROM calendar_booked_slots WHERE location_id = $1`},
			{"accounts", `DELETE FROM accounts WHERE native_id = $1`},
			{"provider_auths", `DELETE FROM provider_auths WHERE native_id = $1 AND account_type = 'location'`},
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, step.query, nativeID); err != nil {
				logger.Error("AccountRepository:DeleteAccountCascade:Error", "step", step.name, "error", err, "native_id", nativeID)
				return err
			}
		}
		return nil
	})
}
