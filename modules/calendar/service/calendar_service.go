package service

import (
	"context"
	"sync"
	"time"

	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/utils"
	accountEntity "booking-router/modules/account/entity"
	"booking-router/modules/calendar/entity"
	"booking-router/modules/calendar/repository"
	providerService "booking-router/modules/provider/service"

	"golang.org/x/sync/errgroup"
)

const (
	syncConcurrency = 4
	// Calendly rejects availability windows that start in the past.
	calendlyLeadTime = 2 * time.Minute
	slotCacheZone    = "GMT"
)

type AdapterResolver interface {
	Get(source string) (providerService.Adapter, error)
}

type AccountLister interface {
	ListAccountsWithAuth(ctx context.Context) ([]accountEntity.AccountWithAuth, error)
}

// CalendarService keeps the mirror store in step with the providers.
type CalendarService interface {
	SyncCalendar(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID, timezone string) (*entity.Calendar, *errors.AppError)
	SyncBookedSlots(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) (int, *errors.AppError)
	RefreshAll(ctx context.Context) (int, *errors.AppError)
	PrefetchSlots(ctx context.Context, now time.Time) (int64, *errors.AppError)
	PurgeSlots(ctx context.Context, now time.Time) (int64, *errors.AppError)
}

type calendarService struct {
	repo         repository.CalendarRepositoryInterface
	accounts     AccountLister
	adapters     AdapterResolver
	businessDays int
	now          func() time.Time
}

func NewCalendarService(repo repository.CalendarRepositoryInterface, accounts AccountLister, adapters AdapterResolver, businessDays int) CalendarService {
	if businessDays <= 0 {
		businessDays = 4
	}
	return &calendarService{
		repo:         repo,
		accounts:     accounts,
		adapters:     adapters,
		businessDays: businessDays,
		now:          time.Now,
	}
}

func (s *calendarService) adapterFor(auth *accountEntity.ProviderAuth) (providerService.Adapter, *errors.AppError) {
	if auth == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "provider auth not found", nil)
	}
	adapter, err := s.adapters.Get(auth.Source)
	if err != nil {
		return nil, asAppError(err, errors.ErrProviderUnsupported, "unsupported provider")
	}
	return adapter, nil
}

// SyncCalendar fetches the calendar and its booked slots from the provider and
// saves both. Saving is an upsert by provider calendar id. Providers that
// report open hours in the location's wall-clock time have them stored in UTC,
// using timezone (IANA name, empty means UTC).
func (s *calendarService) SyncCalendar(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID, timezone string) (*entity.Calendar, *errors.AppError) {
	adapter, appErr := s.adapterFor(auth)
	if appErr != nil {
		return nil, appErr
	}

	snapshot, err := adapter.NormalizeCalendar(ctx, auth, calendarID)
	if err != nil {
		logger.Error("CalendarService:SyncCalendar:NormalizeCalendar:Error", "error", err, "calendar_id", calendarID, "source", auth.Source)
		return nil, asAppError(err, errors.ErrProviderRequest, "failed to fetch calendar")
	}
	if adapter.Capabilities().OpenHours {
		snapshot.OpenHours = openHoursToUTC(snapshot.OpenHours, s.location(timezone), s.now())
	}

	cal, err := s.repo.SaveSnapshot(ctx, snapshot)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "failed to save calendar", err)
	}

	if _, appErr := s.SyncBookedSlots(ctx, auth, calendarID); appErr != nil {
		return nil, appErr
	}

	logger.Info("CalendarService:SyncCalendar:Success", "calendar_id", calendarID, "source", auth.Source,
		"open_hours", len(snapshot.OpenHours), "team_members", len(snapshot.TeamMembers))
	return cal, nil
}

func (s *calendarService) location(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("CalendarService:Location:Invalid", "error", err, "timezone", timezone)
		return time.UTC
	}
	return loc
}

func (s *calendarService) SyncBookedSlots(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) (int, *errors.AppError) {
	adapter, appErr := s.adapterFor(auth)
	if appErr != nil {
		return 0, appErr
	}

	slots, err := adapter.FetchBookedSlots(ctx, auth, calendarID)
	if err != nil {
		logger.Error("CalendarService:SyncBookedSlots:FetchBookedSlots:Error", "error", err, "calendar_id", calendarID)
		return 0, asAppError(err, errors.ErrProviderRequest, "failed to fetch booked slots")
	}
	if err := s.repo.UpsertBookedSlots(ctx, slots); err != nil {
		return 0, errors.NewAppError(errors.ErrDatabase, "failed to save booked slots", err)
	}
	return len(slots), nil
}

// syncTargets returns the connected accounts that have a calendar configured.
func (s *calendarService) syncTargets(ctx context.Context) ([]accountEntity.AccountWithAuth, *errors.AppError) {
	accounts, err := s.accounts.ListAccountsWithAuth(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "failed to list accounts", err)
	}
	targets := accounts[:0]
	for _, a := range accounts {
		if a.Auth == nil || !a.Auth.IsActive || a.CalendarID == "" {
			continue
		}
		targets = append(targets, a)
	}
	return targets, nil
}

// RefreshAll re-syncs every configured account. One account failing does not
// stop the others.
func (s *calendarService) RefreshAll(ctx context.Context) (int, *errors.AppError) {
	targets, appErr := s.syncTargets(ctx)
	if appErr != nil {
		return 0, appErr
	}

	var (
		mu     sync.Mutex
		synced int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)
	for i := range targets {
		account := targets[i]
		g.Go(func() error {
			if _, appErr := s.SyncCalendar(gctx, account.Auth, account.CalendarID, account.Location()); appErr != nil {
				logger.Error("CalendarService:RefreshAll:SyncCalendar:Error", "error", appErr, "native_id", account.NativeID)
				return nil
			}
			mu.Lock()
			synced++
			mu.Unlock()
			return nil
		})
	}
	// workers log their own failures and always return nil
	g.Wait()

	logger.Info("CalendarService:RefreshAll:Done", "accounts", len(targets), "synced", synced)
	return synced, nil
}

// PrefetchSlots stores the open start times of every active calendar for the
// next business days, in UTC.
func (s *calendarService) PrefetchSlots(ctx context.Context, now time.Time) (int64, *errors.AppError) {
	accounts, err := s.accounts.ListAccountsWithAuth(ctx)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrDatabase, "failed to list accounts", err)
	}
	calendars, err := s.repo.ListActiveCalendars(ctx)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrDatabase, "failed to list calendars", err)
	}

	authByLocation := make(map[string]*accountEntity.ProviderAuth, len(accounts))
	for _, a := range accounts {
		if a.Auth != nil && a.Auth.IsActive {
			authByLocation[a.NativeID] = a.Auth
		}
	}

	days := utils.NextBusinessDays(now, s.businessDays)
	var (
		mu      sync.Mutex
		entries []entity.SlotCacheEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)
	for i := range calendars {
		cal := calendars[i]
		auth, ok := authByLocation[cal.LocationID]
		if !ok {
			continue
		}
		g.Go(func() error {
			found := s.prefetchCalendar(gctx, auth, cal, days, now)
			mu.Lock()
			entries = append(entries, found...)
			mu.Unlock()
			return nil
		})
	}
	// workers log their own failures and always return nil
	g.Wait()

	inserted, err := s.repo.InsertSlotCache(ctx, entries)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrDatabase, "failed to store prefetched slots", err)
	}
	logger.Info("CalendarService:PrefetchSlots:Done", "calendars", len(calendars), "slots", len(entries), "inserted", inserted)
	return inserted, nil
}

func (s *calendarService) prefetchCalendar(ctx context.Context, auth *accountEntity.ProviderAuth, cal entity.Calendar, days []time.Time, now time.Time) []entity.SlotCacheEntry {
	adapter, appErr := s.adapterFor(auth)
	if appErr != nil {
		return nil
	}

	var entries []entity.SlotCacheEntry
	for _, day := range days {
		start, end := day, day.Add(24*time.Hour)
		if auth.Source == constants.SourceCalendly {
			if earliest := now.Add(calendlyLeadTime); start.Before(earliest) {
				start = earliest
			}
		}
		if !start.Before(end) {
			continue
		}

		slots, err := adapter.FetchAvailability(ctx, auth, cal.CalendarID, start, end)
		if err != nil {
			logger.Warn("CalendarService:PrefetchSlots:FetchAvailability:Error", "error", err, "calendar_id", cal.CalendarID, "day", day.Format(utils.DateLayout))
			continue
		}
		for _, slot := range slots {
			at, pErr := utils.ParseTimestamp(slot.StartTime)
			if pErr != nil {
				continue
			}
			entry := entity.SlotCacheEntry{
				CalendarID:      cal.CalendarID,
				LocationID:      cal.LocationID,
				SlotDatetimeUTC: at.UTC(),
				Timezone:        slotCacheZone,
				Date:            day,
			}
			if slot.SchedulingURL != "" {
				u := slot.SchedulingURL
				entry.SchedulingURL = &u
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// PurgeSlots drops the cached slots of the UTC day before now.
func (s *calendarService) PurgeSlots(ctx context.Context, now time.Time) (int64, *errors.AppError) {
	yesterday := now.UTC().AddDate(0, 0, -1)
	deleted, err := s.repo.DeleteSlotCacheByDate(ctx, yesterday)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrDatabase, "failed to delete cached slots", err)
	}
	logger.Info("CalendarService:PurgeSlots:Done", "date", yesterday.Format(utils.DateLayout), "deleted", deleted)
	return deleted, nil
}

// asAppError keeps an AppError from a lower layer and wraps anything else.
func asAppError(err error, code errors.ErrorCode, message string) *errors.AppError {
	if ae, ok := err.(*errors.AppError); ok && ae != nil {
		return ae
	}
	return errors.NewAppError(code, message, err)
}
