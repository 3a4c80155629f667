package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"booking-router/core/database"
	"booking-router/modules/account/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*AccountRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAccountRepository(database.New(sqlx.NewDb(db, "postgres"))), mock
}

var accountCols = []string{"id", "auth_id", "native_id", "company_id", "name", "email", "phone", "timezone",
	"calendar_id", "mirror_calendar_id", "spend_amount", "priority_score", "states", "asset_minimum",
	"condition", "redirect_url", "custom_field_id", "calendly_slug", "calendly_scheduling_url",
	"created_at", "updated_at"}

var authCols = []string{"id", "source", "account_type", "native_id", "company_id", "access_token",
	"refresh_token", "expires_in", "is_active", "calendly_organization", "created_at", "updated_at"}

func accountRow(rows *sqlmock.Rows, id uuid.UUID, authID uuid.UUID, nativeID string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id.String(), authID.String(), nativeID, "", "Acme", "ops@acme.test", "", "UTC",
		"cal-1", nil, "100", "0", "{state-1,state-2}", "", "AND", "https://acme.test/thanks",
		"", "", "", now, now)
}

func TestGetAccountByNativeID_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE native_id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(accountCols))

	account, err := repo.GetAccountByNativeID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, account)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccountsWithAuthByNativeIDs_StitchesAuth(t *testing.T) {
	repo, mock := setupRepo(t)
	accountID, authID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE native_id IN ($1, $2)`)).
		WithArgs("loc-1", "loc-2").
		WillReturnRows(accountRow(sqlmock.NewRows(accountCols), accountID, authID, "loc-1"))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM provider_auths WHERE id IN ($1)`)).
		WithArgs(authID).
		WillReturnRows(sqlmock.NewRows(authCols).
			AddRow(authID.String(), "ghl", "location", "loc-1", "comp-1", "tok", "ref", 86399, true, "", now, now))

	accounts, err := repo.ListAccountsWithAuthByNativeIDs(context.Background(), []string{"loc-1", "loc-2"})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "loc-1", accounts[0].NativeID)
	assert.Equal(t, []string{"state-1", "state-2"}, []string(accounts[0].States))
	require.NotNil(t, accounts[0].Auth)
	assert.Equal(t, "ghl", accounts[0].Source())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccountsWithAuthByNativeIDs_Empty(t *testing.T) {
	repo, mock := setupRepo(t)

	accounts, err := repo.ListAccountsWithAuthByNativeIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConfiguration_KeepsUnsetFields(t *testing.T) {
	repo, mock := setupRepo(t)
	accountID, authID := uuid.New(), uuid.New()
	condition := "OR"

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE accounts SET`)).
		WithArgs("loc-1", "250", "cal-9", "https://acme.test/done", nil,
			nil, nil, nil, &condition, nil, nil).
		WillReturnRows(accountRow(sqlmock.NewRows(accountCols), accountID, authID, "loc-1"))

	account, err := repo.UpdateConfiguration(context.Background(), &ConfigurationUpdate{
		NativeID:    "loc-1",
		SpendAmount: "250",
		CalendarID:  "cal-9",
		RedirectURL: "https://acme.test/done",
		Condition:   &condition,
	})
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccountCascade(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM calendars WHERE location_id = $1`)).
		WithArgs("loc-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM calendar_booked_slots WHERE location_id = $1`)).
		WithArgs("loc-1").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts WHERE native_id = $1`)).
		WithArgs("loc-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM provider_auths WHERE native_id = $1`)).
		WithArgs("loc-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteAccountCascade(context.Background(), "loc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccountCascade_RollsBack(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM calendars`)).
		WithArgs("loc-1").WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	err := repo.DeleteAccountCascade(context.Background(), "loc-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAuth_ReportsInsert(t *testing.T) {
	repo, mock := setupRepo(t)
	authID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO provider_auths`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).
			AddRow(authID.String(), now, now, true))

	auth := &entity.ProviderAuth{Source: "oncehub", AccountType: "location", NativeID: "USR-1", AccessToken: "key", IsActive: true}
	inserted, err := repo.UpsertAuth(context.Background(), auth)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, authID, auth.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateByNativeID(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE provider_auths SET is_active = FALSE`)).
		WithArgs("loc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeactivateByNativeID(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
