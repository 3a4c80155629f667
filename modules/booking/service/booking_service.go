package service

import (
	"context"
	"strings"
	"time"

	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/metrics"
	"booking-router/core/utils"
	accountEntity "booking-router/modules/account/entity"
	"booking-router/modules/booking/dto"
	calendarEntity "booking-router/modules/calendar/entity"
	providerService "booking-router/modules/provider/service"
)

// Pipeline states of one request.
const (
	StateReceived             = "RECEIVED"
	StateCandidatesFetched    = "CANDIDATES_FETCHED"
	StateEligibleFiltered     = "ELIGIBLE_FILTERED"
	StateAvailabilityResolved = "AVAILABILITY_RESOLVED"
	StateRanked               = "RANKED"
	StateLiveConfirmed        = "LIVE_CONFIRMED"
	StateSelected             = "SELECTED"
	StateCommitted            = "COMMITTED"
	StateFailed               = "FAILED"
	// StateNoCalendar ends a fetch that confirmed or selected nothing.
	StateNoCalendar = "NO_CALENDAR"
)

const (
	pipelineFetchSlots = "fetch_slots"
	pipelineBooking    = "booking"
)

type AdapterResolver interface {
	Get(source string) (providerService.Adapter, error)
}

// MirrorStore is the part of the mirror the pipeline reads, plus the inline
// booked-slot write for providers without booking webhooks.
type MirrorStore interface {
	ListCandidatesByDuration(ctx context.Context, durationSeconds int64) ([]calendarEntity.Candidate, error)
	ListOpenHours(ctx context.Context, calendarIDs []string) ([]calendarEntity.OpenHour, error)
	ListTeamMembers(ctx context.Context, calendarIDs []string) ([]calendarEntity.TeamMember, error)
	ListBookedSlots(ctx context.Context, calendarIDs []string) ([]calendarEntity.BookedSlot, error)
	FindSlotCacheHits(ctx context.Context, calendarIDs []string, start time.Time) ([]string, error)
	UpsertBookedSlot(ctx context.Context, slot *calendarEntity.BookedSlot) error
}

type AccountStore interface {
	GetAccountWithAuth(ctx context.Context, nativeID string) (*accountEntity.AccountWithAuth, error)
	ListAccountsWithAuthByNativeIDs(ctx context.Context, nativeIDs []string) ([]accountEntity.AccountWithAuth, error)
}

// StateResolver maps a state name or abbreviation to state ids.
type StateResolver interface {
	ResolveStateIDs(ctx context.Context, state string) ([]string, error)
}

type BookingService interface {
	FetchSlots(ctx context.Context, req *dto.FetchSlotsRequest) (*dto.FetchSlotsResponse, *errors.AppError)
	Book(ctx context.Context, req *dto.BookingRequest) (*dto.BookingResponse, *errors.AppError)
}

type Options struct {
	EnablePriorityScore bool
	Strategy            SelectionStrategy
}

type bookingService struct {
	mirror   MirrorStore
	accounts AccountStore
	states   StateResolver
	utmNames UTMNameResolver
	adapters AdapterResolver
	opts     Options
	outcome  func(pipeline, state string)
}

func NewBookingService(mirror MirrorStore, accounts AccountStore, states StateResolver, utmNames UTMNameResolver, adapters AdapterResolver, opts Options) BookingService {
	if opts.Strategy == nil {
		opts.Strategy = NewStrategy(StrategyUniform, nil)
	}
	return &bookingService{
		mirror:   mirror,
		accounts: accounts,
		states:   states,
		utmNames: utmNames,
		adapters: adapters,
		opts:     opts,
		outcome:  metrics.RecordPipelineOutcome,
	}
}

func (s *bookingService) fail(pipeline string, appErr *errors.AppError) *errors.AppError {
	s.outcome(pipeline, StateFailed)
	return appErr
}

func stage(state string, candidates []Candidate) {
	metrics.RecordStageCandidates(state, len(candidates))
	logger.Info("BookingService:FetchSlots:"+state, "count", len(candidates), "calendar_ids", calendarIDs(candidates))
}

func parseWindow(start, end string) (time.Time, time.Time, *errors.AppError) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Missing one of the required fields: startTime, endTime", nil)
	}
	from, err := utils.ParseTimestamp(start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid startTime", err)
	}
	to, err := utils.ParseTimestamp(end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid endTime", err)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "endTime must be after startTime", nil)
	}
	return from.UTC(), to.UTC(), nil
}

// FetchSlots runs the selection pipeline for a requested window and returns
// the winning calendar, or a nil calendar when nothing is free.
func (s *bookingService) FetchSlots(ctx context.Context, req *dto.FetchSlotsRequest) (*dto.FetchSlotsResponse, *errors.AppError) {
	logger.Info("BookingService:FetchSlots:"+StateReceived, "start", req.StartTime, "end", req.EndTime)

	start, end, appErr := parseWindow(req.StartTime, req.EndTime)
	if appErr != nil {
		return nil, s.fail(pipelineFetchSlots, appErr)
	}

	targeting, appErr := s.targeting(ctx, req.UTMParams)
	if appErr != nil {
		return nil, s.fail(pipelineFetchSlots, appErr)
	}

	duration := int64(end.Sub(start) / time.Second)
	rows, err := s.mirror.ListCandidatesByDuration(ctx, duration)
	if err != nil {
		logger.Error("BookingService:FetchSlots:ListCandidatesByDuration:Error", "error", err, "duration", duration)
		return nil, s.fail(pipelineFetchSlots, errors.NewAppError(errors.ErrDatabase, "Failed to fetch calendars", err))
	}

	accounts, err := s.accounts.ListAccountsWithAuthByNativeIDs(ctx, locationIDs(rows))
	if err != nil {
		logger.Error("BookingService:FetchSlots:ListAccounts:Error", "error", err)
		return nil, s.fail(pipelineFetchSlots, errors.NewAppError(errors.ErrDatabase, "Failed to fetch accounts", err))
	}
	candidates := linkAccounts(rows, activeAccounts(accounts))
	stage(StateCandidatesFetched, candidates)

	candidates = FilterEligible(ctx, s.utmNames, candidates, targeting)
	stage(StateEligibleFiltered, candidates)

	booked, appErr := s.attachSchedules(ctx, candidates)
	if appErr != nil {
		return nil, s.fail(pipelineFetchSlots, appErr)
	}
	candidates = ResolveAvailability(s.adapters, candidates, booked, start, end)
	stage(StateAvailabilityResolved, candidates)

	ranked := Rank(candidates, s.opts.EnablePriorityScore)
	stage(StateRanked, ranked)

	confirmed := ConfirmAll(ctx, s.adapters, ranked, start, end)
	stage(StateLiveConfirmed, confirmed)

	winner, appErr := s.selectWinner(ctx, ranked, confirmed, start)
	if appErr != nil {
		return nil, s.fail(pipelineFetchSlots, appErr)
	}
	resp := &dto.FetchSlotsResponse{Success: true, Message: "Calendars fetched successfully"}
	if winner == nil {
		logger.Info("BookingService:FetchSlots:NoCalendarAvailable", "start", req.StartTime, "end", req.EndTime)
		s.outcome(pipelineFetchSlots, StateNoCalendar)
		return resp, nil
	}

	logger.Info("BookingService:FetchSlots:"+StateSelected, "calendar_id", winner.CalendarID, "location_id", winner.LocationID, "source", winner.Source())
	s.outcome(pipelineFetchSlots, StateSelected)
	resp.Calendar = toCalendarMatch(winner)
	return resp, nil
}

func (s *bookingService) targeting(ctx context.Context, utm map[string]any) (Targeting, *errors.AppError) {
	t := Targeting{UTMParams: utm}
	if t.UTMParams == nil {
		t.UTMParams = map[string]any{}
	}

	state, _ := t.UTMParams["state"].(string)
	state = strings.TrimSpace(state)
	if state == "" || strings.EqualFold(state, constants.StateAll) {
		return t, nil
	}

	ids, err := s.states.ResolveStateIDs(ctx, state)
	if err != nil {
		logger.Error("BookingService:FetchSlots:ResolveStateIDs:Error", "error", err, "state", state)
		return t, errors.NewAppError(errors.ErrDatabase, "Failed to resolve state", err)
	}
	t.CheckState = true
	t.MatchedStateIDs = ids
	return t, nil
}

// attachSchedules loads open hours and team members onto the candidates and
// returns the booked slots of their calendars.
func (s *bookingService) attachSchedules(ctx context.Context, candidates []Candidate) ([]calendarEntity.BookedSlot, *errors.AppError) {
	if len(candidates) == 0 {
		return nil, nil
	}
	ids := calendarIDs(candidates)

	hours, err := s.mirror.ListOpenHours(ctx, ids)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch open hours", err)
	}
	members, err := s.mirror.ListTeamMembers(ctx, ids)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch team members", err)
	}
	booked, err := s.mirror.ListBookedSlots(ctx, ids)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch booked slots", err)
	}

	hoursBy := map[string][]calendarEntity.OpenHour{}
	for _, h := range hours {
		hoursBy[h.CalendarID] = append(hoursBy[h.CalendarID], h)
	}
	membersBy := map[string][]calendarEntity.TeamMember{}
	for _, m := range members {
		membersBy[m.CalendarID] = append(membersBy[m.CalendarID], m)
	}
	for i := range candidates {
		candidates[i].OpenHours = hoursBy[candidates[i].CalendarID]
		candidates[i].TeamMembers = membersBy[candidates[i].CalendarID]
	}
	return booked, nil
}

// selectWinner returns the top confirmed candidate, unless a prefetched slot
// at start conflicts with some candidates: then the strategy draws among the
// confirmed candidates outside that conflict set.
func (s *bookingService) selectWinner(ctx context.Context, ranked, confirmed []Candidate, start time.Time) (*Candidate, *errors.AppError) {
	if len(confirmed) == 0 {
		return nil, nil
	}

	hits, err := s.mirror.FindSlotCacheHits(ctx, calendarIDs(ranked), start)
	if err != nil {
		logger.Error("BookingService:FetchSlots:FindSlotCacheHits:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrDatabase, "Failed to fetch calendar slots", err)
	}
	if len(hits) == 0 {
		winner := confirmed[0]
		return &winner, nil
	}

	conflict := make(map[string]bool, len(hits))
	for _, id := range hits {
		conflict[id] = true
	}
	pool := make([]Candidate, 0, len(confirmed))
	for _, c := range confirmed {
		if !conflict[c.CalendarID] {
			pool = append(pool, c)
		}
	}
	logger.Info("BookingService:FetchSlots:SlotCacheConflict", "conflicts", hits, "pool", calendarIDs(pool), "strategy", s.opts.Strategy.Name())

	winner, ok := s.opts.Strategy.Pick(pool)
	if !ok {
		return nil, nil
	}
	return winner, nil
}

func activeAccounts(accounts []accountEntity.AccountWithAuth) []accountEntity.AccountWithAuth {
	active := make([]accountEntity.AccountWithAuth, 0, len(accounts))
	for _, a := range accounts {
		if a.Auth != nil && a.Auth.IsActive {
			active = append(active, a)
		}
	}
	return active
}

func toCalendarMatch(c *Candidate) *dto.CalendarMatch {
	return &dto.CalendarMatch{
		ID:           c.ID.String(),
		CalendarID:   c.CalendarID,
		LocationID:   c.LocationID,
		Name:         c.Name,
		Source:       c.Source(),
		SlotDuration: c.SlotDuration,
		BookedSlots:  c.BookedSlots,
		SpendAmount:  c.Account.SpendAmount,
		RedirectURL:  c.Account.RedirectURL,
		Slug:         c.Slug,
		MatchedSlot:  c.MatchedSlot,
	}
}

// Book creates the contact and the appointment on the account's provider.
// A contact created before a failed appointment is left on the provider.
func (s *bookingService) Book(ctx context.Context, req *dto.BookingRequest) (*dto.BookingResponse, *errors.AppError) {
	logger.Info("BookingService:Book:"+StateReceived, "location_id", req.LocationID, "start", req.StartTime)

	start, end, appErr := parseWindow(req.StartTime, req.EndTime)
	if appErr != nil {
		return nil, s.fail(pipelineBooking, appErr)
	}

	account, err := s.accounts.GetAccountWithAuth(ctx, req.LocationID)
	if err != nil {
		logger.Error("BookingService:Book:GetAccountWithAuth:Error", "error", err, "location_id", req.LocationID)
		return nil, s.fail(pipelineBooking, errors.NewAppError(errors.ErrDatabase, "Failed to fetch subaccount", err))
	}
	if account == nil || account.Auth == nil || !account.Auth.IsActive {
		return nil, s.fail(pipelineBooking, errors.NewAppError(errors.ErrNotFound, "Subaccount not found", nil))
	}

	adapter, err := s.adapters.Get(account.Source())
	if err != nil {
		return nil, s.fail(pipelineBooking, asAppError(err, errors.ErrProviderUnsupported, "Unsupported provider"))
	}

	var contactID string
	if adapter.Capabilities().Contacts {
		contact, err := adapter.CreateContact(ctx, account.Auth, providerService.ContactInput{
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Email:         req.Email,
			Phone:         req.Phone,
			LocationID:    account.NativeID,
			CustomFieldID: account.CustomFieldID,
			UTMParams:     req.UTMParams,
		})
		if err != nil || contact == nil || contact.ID == "" {
			logger.Error("BookingService:Book:CreateContact:Error", "error", err, "location_id", account.NativeID)
			appErr := errors.NewAppError(errors.ErrBusinessRule, "Contact was not created", err)
			if ae, ok := err.(*errors.AppError); ok && ae != nil {
				appErr = appErr.WithDetails(ae.Details)
			}
			return nil, s.fail(pipelineBooking, appErr)
		}
		contactID = contact.ID
	}

	timezone := account.Timezone
	if timezone == "" {
		timezone = req.TimeZone
	}
	if timezone == "" {
		timezone = "UTC"
	}

	appt, err := adapter.CreateAppointment(ctx, account.Auth, providerService.AppointmentInput{
		CalendarID: account.CalendarID,
		LocationID: account.NativeID,
		ContactID:  contactID,
		Start:      start,
		End:        end,
		Timezone:   timezone,
		GuestName:  strings.TrimSpace(req.FirstName + " " + req.LastName),
		GuestEmail: req.Email,
	})
	if err != nil || appt == nil {
		logger.Error("BookingService:Book:CreateAppointment:Error", "error", err, "calendar_id", account.CalendarID, "location_id", account.NativeID)
		details := map[string]any{
			"calendarId": account.CalendarID,
			"locationId": account.NativeID,
		}
		if ae, ok := err.(*errors.AppError); ok && ae != nil && ae.Details != nil {
			details["provider"] = ae.Details
		}
		return nil, s.fail(pipelineBooking, errors.NewAppError(errors.ErrProviderRequest, "Appointment was not created", err).WithDetails(details))
	}

	if appt.Booked != nil {
		if err := s.mirror.UpsertBookedSlot(ctx, appt.Booked); err != nil {
			logger.Error("BookingService:Book:UpsertBookedSlot:Error", "error", err, "event_id", appt.Booked.EventID)
		}
	}

	logger.Info("BookingService:Book:"+StateCommitted, "appointment_id", appt.ID, "calendar_id", account.CalendarID, "location_id", account.NativeID)
	s.outcome(pipelineBooking, StateCommitted)
	return &dto.BookingResponse{
		Success:       true,
		Message:       "Appointment booked successfully",
		RedirectURL:   account.RedirectURL,
		AppointmentID: appt.ID,
		ContactID:     contactID,
	}, nil
}

func asAppError(err error, code errors.ErrorCode, message string) *errors.AppError {
	if ae, ok := err.(*errors.AppError); ok && ae != nil {
		return ae
	}
	return errors.NewAppError(code, message, err)
}
