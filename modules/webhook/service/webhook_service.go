package service

import (
	"context"
	"strings"
	"time"

	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/utils"
	accountEntity "booking-router/modules/account/entity"
	calendarEntity "booking-router/modules/calendar/entity"
	providerService "booking-router/modules/provider/service"
	"booking-router/modules/webhook/dto"
)

const (
	EventInstall            = "INSTALL"
	EventUninstall          = "UNINSTALL"
	EventAppointmentCreate  = "AppointmentCreate"
	EventAppointmentUpdate  = "AppointmentUpdate"
	EventAppointmentDelete  = "AppointmentDelete"
	EventInviteeCreated     = "invitee.created"
	EventInviteeCanceled    = "invitee.canceled"
	EventBookingScheduled   = "booking.scheduled"
	EventBookingRescheduled = "booking.rescheduled"
	EventBookingCanceled    = "booking.canceled"
)

const (
	msgTokenSaved = "Token generated and saved successfully."
	msgDataSaved  = "Data saved successfully"
)

type AccountStore interface {
	GetCompanyAuth(ctx context.Context, companyID string) (*accountEntity.ProviderAuth, error)
	UpsertAuth(ctx context.Context, auth *accountEntity.ProviderAuth) (bool, error)
	UpsertAccountProfile(ctx context.Context, account *accountEntity.Account) error
	DeactivateByNativeID(ctx context.Context, nativeID string) (int64, error)
	DeactivateByCompanyID(ctx context.Context, companyID string) (int64, error)
}

type SlotStore interface {
	UpsertBookedSlot(ctx context.Context, slot *calendarEntity.BookedSlot) error
	DeleteBookedSlot(ctx context.Context, eventID string) (int64, error)
}

// GhlInstaller is the agency-side API used to onboard a sub-account.
type GhlInstaller interface {
	LocationToken(ctx context.Context, companyToken, companyID, locationID string) (*providerService.GhlToken, error)
	GetLocation(ctx context.Context, token, locationID string) (*providerService.GhlLocation, error)
	CreateCustomField(ctx context.Context, token, locationID string) (string, error)
}

type WebhookService interface {
	Handle(ctx context.Context, payload *dto.WebhookPayload) (string, *errors.AppError)
}

type webhookService struct {
	accounts AccountStore
	slots    SlotStore
	ghl      GhlInstaller
	tokens   providerService.TokenProvider
	now      func() time.Time
}

func NewWebhookService(accounts AccountStore, slots SlotStore, ghl GhlInstaller, tokens providerService.TokenProvider) WebhookService {
	return &webhookService{
		accounts: accounts,
		slots:    slots,
		ghl:      ghl,
		tokens:   tokens,
		now:      time.Now,
	}
}

func (s *webhookService) Handle(ctx context.Context, payload *dto.WebhookPayload) (string, *errors.AppError) {
	kind := Normalize(payload.Kind())
	logger.Info("WebhookService:Handle:Received", "kind", kind, "location_id", payload.LocationID)

	switch kind {
	case EventInstall:
		return msgTokenSaved, s.install(ctx, payload)
	case EventUninstall:
		return msgTokenSaved, s.uninstall(ctx, payload)
	case EventAppointmentCreate:
		return msgDataSaved, s.appointmentCreate(ctx, payload)
	case EventAppointmentUpdate:
		return msgDataSaved, s.appointmentUpdate(ctx, payload)
	case EventAppointmentDelete:
		return msgDataSaved, s.appointmentDelete(ctx, payload)
	case EventInviteeCreated:
		return msgDataSaved, s.inviteeCreated(ctx, payload)
	case EventInviteeCanceled:
		return msgDataSaved, s.inviteeCanceled(ctx, payload)
	case EventBookingScheduled, EventBookingRescheduled:
		return msgDataSaved, s.bookingScheduled(ctx, payload)
	case EventBookingCanceled:
		return msgDataSaved, s.bookingCanceled(ctx, payload)
	default:
		return "", errors.NewAppError(errors.ErrInvalidInput, "Unhandled webhook type.", nil)
	}
}

// install onboards a sub-account the agency installed the app on, using the
// agency's stored token to mint a location token.
func (s *webhookService) install(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	if p.InstallType != "Location" {
		return errors.NewAppError(errors.ErrBusinessRule, "Ignoring non-location webhook.", nil)
	}
	if p.LocationID == "" || p.CompanyID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "locationId and companyId are required", nil)
	}

	companyAuth, err := s.accounts.GetCompanyAuth(ctx, p.CompanyID)
	if err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Internal Server Error", err)
	}
	if companyAuth == nil {
		return errors.NewAppError(errors.ErrBusinessRule, "Access token not found.", nil)
	}
	companyToken, err := s.tokens.AccessToken(ctx, companyAuth)
	if err != nil {
		return asAppError(err, "failed to refresh company token")
	}

	tok, err := s.ghl.LocationToken(ctx, companyToken, p.CompanyID, p.LocationID)
	if err != nil {
		return asAppError(err, "failed to generate location token")
	}

	auth := &accountEntity.ProviderAuth{
		Source:       constants.SourceGHL,
		AccountType:  constants.AccountTypeLocation,
		NativeID:     p.LocationID,
		CompanyID:    p.CompanyID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		IsActive:     true,
	}
	inserted, err := s.accounts.UpsertAuth(ctx, auth)
	if err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Failed to save API response.", err)
	}
	if !inserted {
		return nil
	}

	account := &accountEntity.Account{AuthID: &auth.ID, NativeID: p.LocationID, CompanyID: p.CompanyID, Timezone: "UTC"}
	if loc, err := s.ghl.GetLocation(ctx, tok.AccessToken, p.LocationID); err != nil {
		logger.Warn("WebhookService:Install:GetLocation:Error", "error", err, "location_id", p.LocationID)
	} else {
		account.Name = loc.Name
		account.Email = loc.Email
		account.Phone = loc.Phone
		if loc.CompanyID != "" {
			account.CompanyID = loc.CompanyID
		}
		if loc.Timezone != "" {
			account.Timezone = loc.Timezone
		}
	}
	fieldID, err := s.ghl.CreateCustomField(ctx, tok.AccessToken, p.LocationID)
	if err != nil {
		logger.Warn("WebhookService:Install:CreateCustomField:Error", "error", err, "location_id", p.LocationID)
	}
	account.CustomFieldID = fieldID

	if err := s.accounts.UpsertAccountProfile(ctx, account); err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Failed to save API response.", err)
	}
	logger.Info("WebhookService:Install:AccountCreated", "location_id", p.LocationID, "custom_field_id", fieldID)
	return nil
}

// uninstall deactivates the auth rows; accounts are kept.
func (s *webhookService) uninstall(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	var (
		n   int64
		err error
	)
	switch {
	case p.LocationID != "":
		n, err = s.accounts.DeactivateByNativeID(ctx, p.LocationID)
	case p.CompanyID != "":
		n, err = s.accounts.DeactivateByCompanyID(ctx, p.CompanyID)
	default:
		return errors.NewAppError(errors.ErrInvalidInput, "locationId or companyId is required", nil)
	}
	if err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Internal Server Error", err)
	}
	if n == 0 {
		return errors.NewAppError(errors.ErrBusinessRule, "Failed to save API response.", nil)
	}
	return nil
}

func (s *webhookService) ghlSlot(p *dto.WebhookPayload) (*calendarEntity.BookedSlot, *errors.AppError) {
	a := p.Appointment
	if a == nil || a.ID == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid or past appointment time or missing event ID.", nil)
	}
	start, sErr := utils.ParseTimestamp(a.StartTime)
	end, eErr := utils.ParseTimestamp(a.EndTime)
	if sErr != nil || eErr != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid or past appointment time or missing event ID.", nil)
	}
	return &calendarEntity.BookedSlot{
		EventID:        a.ID,
		CalendarID:     a.CalendarID,
		LocationID:     p.LocationID,
		AssignedUserID: a.AssignedUserID,
		StartTime:      start.Unix(),
		EndTime:        end.Unix(),
		Status:         a.AppointmentStatus,
		ContactID:      a.ContactID,
	}, nil
}

func (s *webhookService) upsert(ctx context.Context, slot *calendarEntity.BookedSlot) *errors.AppError {
	if err := s.slots.UpsertBookedSlot(ctx, slot); err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Internal Server Error", err)
	}
	logger.Info("WebhookService:BookedSlotSaved", "event_id", slot.EventID, "calendar_id", slot.CalendarID)
	return nil
}

func (s *webhookService) delete(ctx context.Context, eventID string) *errors.AppError {
	n, err := s.slots.DeleteBookedSlot(ctx, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrDatabase, "Internal Server Error", err)
	}
	logger.Info("WebhookService:BookedSlotDeleted", "event_id", eventID, "rows", n)
	return nil
}

// started reports whether an appointment starting at unix has begun.
func (s *webhookService) started(unix int64) bool {
	return !s.now().Before(time.Unix(unix, 0))
}

func (s *webhookService) appointmentCreate(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	slot, appErr := s.ghlSlot(p)
	if appErr != nil {
		return appErr
	}
	return s.upsert(ctx, slot)
}

func (s *webhookService) appointmentUpdate(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	slot, appErr := s.ghlSlot(p)
	if appErr != nil {
		return appErr
	}
	if s.started(slot.StartTime) {
		return errors.NewAppError(errors.ErrBusinessRule, "Invalid or past appointment time or missing event ID.", nil)
	}
	return s.upsert(ctx, slot)
}

func (s *webhookService) appointmentDelete(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	a := p.Appointment
	if a == nil || a.ID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "missing event ID", nil)
	}
	start, err := utils.ParseTimestamp(a.StartTime)
	if err != nil || s.started(start.Unix()) {
		return errors.NewAppError(errors.ErrBusinessRule, "Cannot delete a past or ongoing appointment.", nil)
	}
	return s.delete(ctx, a.ID)
}

// calendlySlot assigns the slot to the event's host so it takes part in
// single-user conflict checks.
func (s *webhookService) calendlySlot(p *dto.WebhookPayload) (*calendarEntity.BookedSlot, *errors.AppError) {
	if p.Payload == nil || p.Payload.ScheduledEvent == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "missing scheduled event", nil)
	}
	ev := p.Payload.ScheduledEvent
	eventID := utils.LastPathSegment(ev.URI)
	if eventID == "" {
		eventID = utils.LastPathSegment(p.Payload.Event)
	}
	start, sErr := utils.ParseTimestamp(ev.StartTime)
	end, eErr := utils.ParseTimestamp(ev.EndTime)
	if eventID == "" || sErr != nil || eErr != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid scheduled event", nil)
	}
	var host string
	if len(ev.EventMemberships) > 0 {
		host = utils.LastPathSegment(ev.EventMemberships[0].User)
	}
	return &calendarEntity.BookedSlot{
		EventID:        eventID,
		CalendarID:     utils.LastPathSegment(ev.EventType),
		LocationID:     host,
		AssignedUserID: host,
		StartTime:      start.Unix(),
		EndTime:        end.Unix(),
		Status:         ev.Status,
	}, nil
}

func (s *webhookService) inviteeCreated(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	slot, appErr := s.calendlySlot(p)
	if appErr != nil {
		return appErr
	}
	return s.upsert(ctx, slot)
}

func (s *webhookService) inviteeCanceled(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	slot, appErr := s.calendlySlot(p)
	if appErr != nil {
		return appErr
	}
	if s.started(slot.StartTime) {
		return errors.NewAppError(errors.ErrBusinessRule, "Cannot delete a past or ongoing appointment.", nil)
	}
	return s.delete(ctx, slot.EventID)
}

func (s *webhookService) bookingScheduled(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	if p.Data == nil || p.Data.ID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "missing booking", nil)
	}
	slot, err := p.Data.BookedSlot(p.Data.Owner, "")
	if err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, "invalid booking time", err)
	}
	return s.upsert(ctx, slot)
}

func (s *webhookService) bookingCanceled(ctx context.Context, p *dto.WebhookPayload) *errors.AppError {
	if p.Data == nil || p.Data.ID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "missing booking", nil)
	}
	if start, err := utils.ParseTimestamp(p.Data.StartingTime); err == nil && s.started(start.Unix()) {
		return errors.NewAppError(errors.ErrBusinessRule, "Cannot delete a past or ongoing appointment.", nil)
	}
	return s.delete(ctx, p.Data.ID)
}

func asAppError(err error, fallback string) *errors.AppError {
	if ae, ok := err.(*errors.AppError); ok && ae != nil {
		return ae
	}
	return errors.NewAppError(errors.ErrProviderRequest, fallback, err)
}

// Normalize lower-cases Calendly/OnceHub event names; GHL names are kept.
func Normalize(kind string) string {
	if strings.Contains(kind, ".") {
		return strings.ToLower(kind)
	}
	return kind
}
