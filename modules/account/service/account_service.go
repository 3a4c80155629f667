package service

import (
	"context"
	"strings"

	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/modules/account/dto"
	"booking-router/modules/account/entity"
	"booking-router/modules/account/repository"
	calendarEntity "booking-router/modules/calendar/entity"
	providerService "booking-router/modules/provider/service"
)

// CalendarSyncer mirrors one provider calendar with its booked slots.
type CalendarSyncer interface {
	SyncCalendar(ctx context.Context, auth *entity.ProviderAuth, calendarID, timezone string) (*calendarEntity.Calendar, *errors.AppError)
}

type AdapterResolver interface {
	Get(source string) (providerService.Adapter, error)
}

type AccountService interface {
	GetLocation(ctx context.Context, nativeID string) (*entity.AccountWithAuth, *errors.AppError)
	ListAccounts(ctx context.Context) ([]entity.AccountWithAuth, *errors.AppError)
	ConfigureAccount(ctx context.Context, req *dto.ConfigureAccountRequest) (*dto.ConfigureAccountResponse, *errors.AppError)
	DeleteAccount(ctx context.Context, nativeID string) *errors.AppError
	ListProviderCalendars(ctx context.Context, nativeID, source string) ([]providerService.CalendarSummary, *errors.AppError)
}

type accountService struct {
	repo      repository.AccountRepositoryInterface
	calendars CalendarSyncer
	adapters  AdapterResolver
}

func NewAccountService(repo repository.AccountRepositoryInterface, calendars CalendarSyncer, adapters AdapterResolver) AccountService {
	return &accountService{repo: repo, calendars: calendars, adapters: adapters}
}

func (s *accountService) GetLocation(ctx context.Context, nativeID string) (*entity.AccountWithAuth, *errors.AppError) {
	nativeID = strings.TrimSpace(nativeID)
	if nativeID == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "id is required", nil)
	}
	account, err := s.repo.GetAccountWithAuth(ctx, nativeID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch subaccount", err)
	}
	if account == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Subaccount not found", nil)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]entity.AccountWithAuth, *errors.AppError) {
	accounts, err := s.repo.ListAccountsWithAuth(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch accounts", err)
	}
	return accounts, nil
}

// ConfigureAccount refreshes the chosen calendar from the provider first and
// only saves the targeting when that calendar made it into the mirror.
func (s *accountService) ConfigureAccount(ctx context.Context, req *dto.ConfigureAccountRequest) (*dto.ConfigureAccountResponse, *errors.AppError) {
	logger.Info("AccountService:ConfigureAccount:Start", "native_id", req.NativeID, "calendar_id", req.CalendarID)

	auth, err := s.repo.GetAuthByNativeID(ctx, req.NativeID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch subaccount", err)
	}
	if auth == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Subaccount not found", nil)
	}
	if req.Auth != nil && req.Auth.Source != "" && req.Auth.Source != auth.Source {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "source does not match the connected provider", nil).
			WithDetails(map[string]string{"connected": auth.Source, "requested": req.Auth.Source})
	}

	timezone := ""
	existing, err := s.repo.GetAccountByNativeID(ctx, req.NativeID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch subaccount", err)
	}
	if existing != nil {
		timezone = existing.Timezone
	}

	cal, appErr := s.calendars.SyncCalendar(ctx, auth, req.CalendarID, timezone)
	if appErr != nil || cal == nil {
		logger.Error("AccountService:ConfigureAccount:SyncCalendar:Error", "error", appErr, "native_id", req.NativeID)
		if appErr == nil {
			return nil, errors.NewAppError(errors.ErrDatabase, "Database update failed", nil)
		}
		return nil, errors.NewAppError(errors.ErrDatabase, "Database update failed", appErr).WithDetails(appErr.Details)
	}

	update := &repository.ConfigurationUpdate{
		NativeID:         req.NativeID,
		SpendAmount:      strings.TrimSpace(req.SpendAmount),
		CalendarID:       req.CalendarID,
		RedirectURL:      req.RedirectURL,
		MirrorCalendarID: &cal.ID,
		Phone:            req.Phone,
		States:           req.States,
		AssetMinimum:     req.AssetMinimum,
		Name:             req.Name,
		Email:            req.Email,
	}
	if req.Condition != nil {
		condition := strings.ToUpper(strings.TrimSpace(*req.Condition))
		update.Condition = &condition
	}

	account, err := s.repo.UpdateConfiguration(ctx, update)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Database update failed", err)
	}
	if account == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Subaccount not found", nil)
	}

	logger.Info("AccountService:ConfigureAccount:Success", "native_id", req.NativeID, "mirror_calendar_id", cal.ID)
	return &dto.ConfigureAccountResponse{
		Account:  &entity.AccountWithAuth{Account: *account, Auth: auth},
		Calendar: cal,
	}, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, nativeID string) *errors.AppError {
	account, err := s.repo.GetAccountByNativeID(ctx, nativeID)
	if err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Failed to fetch subaccount", err)
	}
	if account == nil {
		return errors.NewAppError(errors.ErrNotFound, "Subaccount not found", nil)
	}
	if err := s.repo.DeleteAccountCascade(ctx, nativeID); err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Failed to delete subaccount", err)
	}
	logger.Info("AccountService:DeleteAccount:Success", "native_id", nativeID)
	return nil
}

// ListProviderCalendars lists the calendars the account could route to. The
// account must be connected through source.
func (s *accountService) ListProviderCalendars(ctx context.Context, nativeID, source string) ([]providerService.CalendarSummary, *errors.AppError) {
	auth, err := s.repo.GetAuthByNativeID(ctx, nativeID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch subaccount", err)
	}
	if auth == nil || auth.Source != source {
		return nil, errors.NewAppError(errors.ErrNotFound, "Subaccount not found", nil)
	}
	adapter, err := s.adapters.Get(source)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnsupported, "Unsupported provider", err)
	}
	calendars, err := adapter.ListCalendars(ctx, auth)
	if err != nil {
		logger.Error("AccountService:ListProviderCalendars:Error", "error", err, "native_id", nativeID, "source", source)
		if ae, ok := err.(*errors.AppError); ok && ae != nil {
			return nil, ae
		}
		return nil, errors.NewAppError(errors.ErrProviderRequest, "Failed to fetch calendars", err)
	}
	return calendars, nil
}
