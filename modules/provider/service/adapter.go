package service

import (
	"context"
	"time"

	accountEntity "booking-router/modules/account/entity"
	calendarEntity "booking-router/modules/calendar/entity"
)

// AvailabilityModel says how mirrored bookings are attributed to people.
type AvailabilityModel int

const (
	// TeamMembers attributes bookings to calendar team members; the calendar
	// is free while any member is.
	TeamMembers AvailabilityModel = iota
	// SingleUser treats the account's native id as the only scheduler.
	SingleUser
)

type Capabilities struct {
	Contacts     bool
	Appointments bool
	OpenHours    bool
	Availability AvailabilityModel
}

// Slot is one bookable start time reported by a provider.
type Slot struct {
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	SchedulingURL string `json:"scheduling_url,omitempty"`
	Status        string `json:"status,omitempty"`
}

type ContactInput struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	LocationID    string
	CustomFieldID string
	UTMParams     map[string]any
}

type Contact struct {
	ID string `json:"id"`
}

type AppointmentInput struct {
	CalendarID string
	LocationID string
	ContactID  string
	Start      time.Time
	End        time.Time
	Timezone   string
	GuestName  string
	GuestEmail string
}

// Appointment is a created booking. Booked is set when the provider has no
// webhook for its own bookings and the slot must be mirrored inline.
type Appointment struct {
	ID     string
	Booked *calendarEntity.BookedSlot
}

type CalendarSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Adapter hides one provider's API behind the operations the booking
// pipeline, the mirror sync and the jobs need.
type Adapter interface {
	Source() string
	Capabilities() Capabilities
	NormalizeCalendar(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) (*calendarEntity.CalendarSnapshot, error)
	FetchBookedSlots(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) ([]calendarEntity.BookedSlot, error)
	FetchAvailability(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string, start, end time.Time) ([]Slot, error)
	MatchSlot(slots []Slot, start time.Time) (*Slot, bool)
	CreateContact(ctx context.Context, auth *accountEntity.ProviderAuth, in ContactInput) (*Contact, error)
	CreateAppointment(ctx context.Context, auth *accountEntity.ProviderAuth, in AppointmentInput) (*Appointment, error)
	ListCalendars(ctx context.Context, auth *accountEntity.ProviderAuth) ([]CalendarSummary, error)
}

// TokenProvider returns a usable access token for auth, refreshing it first
// when it has expired.
type TokenProvider interface {
	AccessToken(ctx context.Context, auth *accountEntity.ProviderAuth) (string, error)
}

// StaticTokens hands out the stored token as is. OnceHub API keys never expire.
type StaticTokens struct{}

func (StaticTokens) AccessToken(_ context.Context, auth *accountEntity.ProviderAuth) (string, error) {
	return auth.AccessToken, nil
}
