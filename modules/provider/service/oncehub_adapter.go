package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"booking-router/core/config"
	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/utils"
	accountEntity "booking-router/modules/account/entity"
	calendarEntity "booking-router/modules/calendar/entity"

	"github.com/gosimple/slug"
)

const onceHubAccountOwner = "Account Owner"

// OnceHubAdapter maps OnceHub booking calendars onto mirrored calendars. The
// connection authenticates with a non-expiring API key.
type OnceHubAdapter struct {
	appName string
	api     *apiClient
	tokens  TokenProvider
}

func NewOnceHubAdapter(cfg config.OnceHubConfig, appName string, timeout time.Duration) *OnceHubAdapter {
	return &OnceHubAdapter{
		appName: appName,
		api:     newAPIClient(constants.SourceOnceHub, "OnceHubAdapter", cfg.APIBaseURL, timeout),
		tokens:  StaticTokens{},
	}
}

func (a *OnceHubAdapter) Source() string { return constants.SourceOnceHub }

func (a *OnceHubAdapter) Capabilities() Capabilities {
	return Capabilities{Appointments: true, Availability: SingleUser}
}

func apiKeyHeader(key string) map[string]string {
	return map[string]string{"API-Key": key}
}

func (a *OnceHubAdapter) authed(ctx context.Context, auth *accountEntity.ProviderAuth) (map[string]string, error) {
	key, err := a.tokens.AccessToken(ctx, auth)
	if err != nil {
		return nil, err
	}
	return apiKeyHeader(key), nil
}

func (a *OnceHubAdapter) NormalizeCalendar(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) (*calendarEntity.CalendarSnapshot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Duration float64 `json:"duration"`
		Status   string  `json:"status"`
	}
	err = a.api.do(ctx, request{
		op:      "NormalizeCalendar",
		method:  http.MethodGet,
		path:    "/booking-calendars/" + url.PathEscape(calendarID),
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, errors.NewAppError(errors.ErrNotFound, "Calendar data not found", nil)
	}

	duration := utils.ConvertToSeconds(resp.Duration, "mins")
	return &calendarEntity.CalendarSnapshot{
		Calendar: calendarEntity.Calendar{
			CalendarID:   calendarID,
			LocationID:   auth.NativeID,
			Name:         resp.Name,
			SlotDuration: duration,
			SlotInterval: duration,
			IsActive:     resp.Status == "" || strings.EqualFold(resp.Status, "active"),
			Slug:         slug.Make(resp.Name),
		},
	}, nil
}

// OnceHubBooking is a booking as returned by the API and sent in webhooks.
type OnceHubBooking struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	BookingCalendar string  `json:"booking_calendar"`
	StartingTime    string  `json:"starting_time"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// BookedSlot converts a booking payload, from the API or a webhook, into a
// mirrored slot owned by nativeID.
func (b OnceHubBooking) BookedSlot(nativeID, calendarID string) (*calendarEntity.BookedSlot, error) {
	start, err := utils.ParseTimestamp(b.StartingTime)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(b.DurationMinutes * float64(time.Minute)))
	return &calendarEntity.BookedSlot{
		EventID:        b.ID,
		CalendarID:     firstNonEmpty(b.BookingCalendar, calendarID),
		LocationID:     nativeID,
		AssignedUserID: nativeID,
		StartTime:      start.Unix(),
		EndTime:        end.Unix(),
		Status:         b.Status,
	}, nil
}

func (a *OnceHubAdapter) FetchBookedSlots(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) ([]calendarEntity.BookedSlot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []OnceHubBooking `json:"data"`
	}
	err = a.api.do(ctx, request{
		op:      "FetchBookedSlots",
		method:  http.MethodGet,
		path:    "/bookings",
		query:   url.Values{"booking_calendar": {calendarID}, "limit": {"100"}},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}

	slots := make([]calendarEntity.BookedSlot, 0, len(resp.Data))
	for _, b := range resp.Data {
		if strings.EqualFold(b.Status, "canceled") {
			continue
		}
		slot, bErr := b.BookedSlot(auth.NativeID, calendarID)
		if bErr != nil {
			logger.Warn("OnceHubAdapter:FetchBookedSlots:BadBookingTime", "booking_id", b.ID, "error", bErr)
			continue
		}
		slots = append(slots, *slot)
	}
	return slots, nil
}

func (a *OnceHubAdapter) FetchAvailability(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string, start, end time.Time) ([]Slot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp []struct {
		StartTime string `json:"start_time"`
	}
	err = a.api.do(ctx, request{
		op:     "FetchAvailability",
		method: http.MethodGet,
		path:   "/booking-calendars/" + url.PathEscape(calendarID) + "/time-slots",
		query: url.Values{
			"start_time": {utils.FormatISOMillis(start)},
			"end_time":   {utils.FormatISOMillis(end)},
			"timezone":   {"UTC"},
		},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(resp))
	for _, s := range resp {
		date := ""
		if t, pErr := utils.ParseTimestamp(s.StartTime); pErr == nil {
			date = t.UTC().Format(utils.DateLayout)
		}
		slots = append(slots, Slot{Date: date, StartTime: s.StartTime})
	}
	return slots, nil
}

// MatchSlot compares against the requested start rendered as sent.
func (a *OnceHubAdapter) MatchSlot(slots []Slot, start time.Time) (*Slot, bool) {
	want := utils.FormatISOMillis(start)
	for i := range slots {
		if slots[i].StartTime == want {
			return &slots[i], true
		}
	}
	return nil, false
}

func (a *OnceHubAdapter) CreateContact(context.Context, *accountEntity.ProviderAuth, ContactInput) (*Contact, error) {
	return nil, errors.NewAppError(errors.ErrProviderUnsupported, "OnceHub does not support contacts", nil)
}

// CreateAppointment schedules the guest directly. OnceHub sends no webhook
// for API-made bookings, so the returned appointment carries the slot to mirror.
func (a *OnceHubAdapter) CreateAppointment(ctx context.Context, auth *accountEntity.ProviderAuth, in AppointmentInput) (*Appointment, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	timezone := in.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	var resp struct {
		ID string `json:"id"`
	}
	err = a.api.do(ctx, request{
		op:      "CreateAppointment",
		method:  http.MethodPost,
		path:    "/booking-calendars/" + url.PathEscape(in.CalendarID) + "/schedule",
		headers: headers,
		body: map[string]any{
			"start_time": utils.FormatISOSeconds(in.Start),
			"timezone":   timezone,
			"guest": map[string]string{
				"name":  in.GuestName,
				"email": in.GuestEmail,
			},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &Appointment{
		ID: resp.ID,
		Booked: &calendarEntity.BookedSlot{
			EventID:        resp.ID,
			CalendarID:     in.CalendarID,
			LocationID:     in.LocationID,
			AssignedUserID: auth.NativeID,
			StartTime:      in.Start.Unix(),
			EndTime:        in.End.Unix(),
			Status:         "scheduled",
		},
	}, nil
}

func (a *OnceHubAdapter) ListCalendars(ctx context.Context, auth *accountEntity.ProviderAuth) ([]CalendarSummary, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Data []CalendarSummary `json:"data"`
	}
	err = a.api.do(ctx, request{
		op:      "ListCalendars",
		method:  http.MethodGet,
		path:    "/booking-calendars",
		query:   url.Values{"limit": {"100"}},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type OnceHubUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	RoleName  string `json:"role_name"`
}

func (u *OnceHubUser) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AccountOwner validates apiKey and returns the user that owns the account.
func (a *OnceHubAdapter) AccountOwner(ctx context.Context, apiKey string) (*OnceHubUser, error) {
	var resp struct {
		Data []OnceHubUser `json:"data"`
	}
	err := a.api.do(ctx, request{
		op:      "AccountOwner",
		method:  http.MethodGet,
		path:    "/users",
		query:   url.Values{"limit": {"100"}},
		headers: apiKeyHeader(apiKey),
	}, &resp)
	if err != nil {
		return nil, err
	}
	for i := range resp.Data {
		if resp.Data[i].RoleName == onceHubAccountOwner {
			return &resp.Data[i], nil
		}
	}
	return nil, errors.NewAppError(errors.ErrNotFound, "OnceHub account owner not found", nil)
}

func (a *OnceHubAdapter) CreateWebhook(ctx context.Context, apiKey, callbackURL string) error {
	return a.api.do(ctx, request{
		op:      "CreateWebhook",
		method:  http.MethodPost,
		path:    "/webhooks",
		headers: apiKeyHeader(apiKey),
		body: map[string]any{
			"url":    callbackURL,
			"events": []string{"booking"},
			"name":   a.appName,
		},
	}, nil)
}
