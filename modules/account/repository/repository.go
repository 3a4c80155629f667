package repository

import (
	"context"

	"booking-router/core/database"
	"booking-router/modules/account/entity"

	"github.com/google/uuid"
)

type AccountRepositoryInterface interface {
	GetAccountByNativeID(ctx context.Context, nativeID string) (*entity.Account, error)
	GetAccountWithAuth(ctx context.Context, nativeID string) (*entity.AccountWithAuth, error)
	ListAccountsWithAuth(ctx context.Context) ([]entity.AccountWithAuth, error)
	ListAccountsWithAuthByNativeIDs(ctx context.Context, nativeIDs []string) ([]entity.AccountWithAuth, error)
	UpsertAccountProfile(ctx context.Context, account *entity.Account) error
	UpdateConfiguration(ctx context.Context, update *ConfigurationUpdate) (*entity.Account, error)
	DeleteAccountCascade(ctx context.Context, nativeID string) error

	GetAuthByNativeID(ctx context.Context, nativeID string) (*entity.ProviderAuth, error)
	GetCompanyAuth(ctx context.Context, companyID string) (*entity.ProviderAuth, error)
	UpsertAuth(ctx context.Context, auth *entity.ProviderAuth) (bool, error)
	UpdateTokens(ctx context.Context, authID uuid.UUID, accessToken, refreshToken string, expiresIn int64) (*entity.ProviderAuth, error)
	DeactivateByNativeID(ctx context.Context, nativeID string) (int64, error)
	DeactivateByCompanyID(ctx context.Context, companyID string) (int64, error)

	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) error
}

// ConfigurationUpdate carries the editable targeting fields. Nil pointers and
// a nil States slice leave the stored value unchanged.
type ConfigurationUpdate struct {
	NativeID         string
	SpendAmount      string
	CalendarID       string
	RedirectURL      string
	MirrorCalendarID *uuid.UUID
	Phone            *string
	States           []string
	AssetMinimum     *string
	Condition        *string
	Name             *string
	Email            *string
}

type AccountRepository struct {
	db database.IDatabase
}

func NewAccountRepository(db database.IDatabase) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ AccountRepositoryInterface = (*AccountRepository)(nil)
