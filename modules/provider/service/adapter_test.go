package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-router/core/config"
	"booking-router/core/constants"
	"booking-router/core/errors"
	accountEntity "booking-router/modules/account/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locationAuth(source string) *accountEntity.ProviderAuth {
	return &accountEntity.ProviderAuth{
		Source:      source,
		AccountType: constants.AccountTypeLocation,
		NativeID:    "loc-1",
		AccessToken: "token-1",
	}
}

func newGhl(t *testing.T, handler http.HandlerFunc) *GhlAdapter {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGhlAdapter(config.GHLConfig{
		APIBaseURL:   srv.URL,
		AuthBaseURL:  srv.URL,
		APIVersion:   "2021-07-28",
		AppName:      "Router",
		ClientID:     "client",
		ClientSecret: "secret",
	}, 5*time.Second)
}

func TestGhlAdapter_NormalizeCalendar(t *testing.T) {
	ghl := newGhl(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/cal-1", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "2021-07-28", r.Header.Get("Version"))
		io.WriteString(w, `{"calendar":{
			"id":"cal-1","locationId":"loc-1","name":"Intro","slotDuration":30,"slotInterval":1,"slotIntervalUnit":"hours",
			"preBuffer":5,"slotBuffer":10,"slotBufferUnit":"mins",
			"teamMembers":[{"userId":"u1","priority":0.5,"isPrimary":true},{"userId":"u2","priority":1}],
			"openHours":[{"daysOfTheWeek":[1,2],"hours":[{"openHour":9,"openMinute":0,"closeHour":17,"closeMinute":30}]}]
		}}`)
	})

	snap, err := ghl.NormalizeCalendar(context.Background(), locationAuth(constants.SourceGHL), "cal-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1800), snap.Calendar.SlotDuration)
	assert.Equal(t, int64(3600), snap.Calendar.SlotInterval)
	assert.Equal(t, int64(300), snap.Calendar.PreBuffer)
	assert.Equal(t, int64(600), snap.Calendar.PostBuffer)
	assert.True(t, snap.Calendar.IsActive)
	require.Len(t, snap.OpenHours, 2)
	assert.Equal(t, 2, snap.OpenHours[1].DayOfWeek)
	assert.Equal(t, 30, snap.OpenHours[1].CloseMinute)
	require.Len(t, snap.TeamMembers, 2)
	assert.True(t, snap.TeamMembers[0].IsPrimary)
}

func TestGhlAdapter_ProviderErrorCarriesBody(t *testing.T) {
	ghl := newGhl(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message":"calendar not found"}`)
	})

	_, err := ghl.NormalizeCalendar(context.Background(), locationAuth(constants.SourceGHL), "missing")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrProviderRequest, appErr.Code)
	assert.Equal(t, map[string]any{"message": "calendar not found"}, appErr.Details)
}

func TestGhlAdapter_FetchAvailabilityAndMatch(t *testing.T) {
	ghl := newGhl(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/cal-1/free-slots", r.URL.Path)
		assert.Equal(t, "GMT", r.URL.Query().Get("timezone"))
		io.WriteString(w, `{
			"2025-03-10":{"slots":["2025-03-10T15:00:00Z","2025-03-10T15:30:00Z"]},
			"2025-03-11":{"slots":["2025-03-11T15:00:00Z"]},
			"traceId":"abc"
		}`)
	})

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	slots, err := ghl.FetchAvailability(context.Background(), locationAuth(constants.SourceGHL), "cal-1", start, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, slots, 3)

	match, ok := ghl.MatchSlot(slots, start.Add(250*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", match.Date)

	_, ok = ghl.MatchSlot(slots, start.Add(15*time.Minute))
	assert.False(t, ok)
}

func TestGhlAdapter_CreateContactEmbedsUTM(t *testing.T) {
	ghl := newGhl(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/contacts/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Router", body["source"])
		fields := body["customFields"].([]any)
		field := fields[0].(map[string]any)
		assert.Equal(t, "cf-1", field["id"])
		assert.JSONEq(t, `{"utm_source":"google"}`, field["value"].(string))

		io.WriteString(w, `{"contact":{"id":"contact-9"}}`)
	})

	contact, err := ghl.CreateContact(context.Background(), locationAuth(constants.SourceGHL), ContactInput{
		FirstName:     "Ada",
		Email:         "ada@example.com",
		LocationID:    "loc-1",
		CustomFieldID: "cf-1",
		UTMParams:     map[string]any{"utm_source": "google"},
	})
	require.NoError(t, err)
	assert.Equal(t, "contact-9", contact.ID)
}

func TestGhlAdapter_CreateAppointmentUsesAccountTimezone(t *testing.T) {
	ghl := newGhl(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-03-10T11:00:00-04:00", body["startTime"])
		assert.Equal(t, "2025-03-10T11:30:00-04:00", body["endTime"])
		io.WriteString(w, `{"id":"appt-1"}`)
	})

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	appt, err := ghl.CreateAppointment(context.Background(), locationAuth(constants.SourceGHL), AppointmentInput{
		CalendarID: "cal-1",
		LocationID: "loc-1",
		ContactID:  "contact-9",
		Start:      start,
		End:        start.Add(30 * time.Minute),
		Timezone:   "America/New_York",
	})
	require.NoError(t, err)
	assert.Equal(t, "appt-1", appt.ID)
	assert.Nil(t, appt.Booked)
}

func TestGhlAdapter_ExchangeCode(t *testing.T) {
	ghl := newGhl(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "Location", r.PostForm.Get("user_type"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_in":86399,"token_type":"Bearer","locationId":"loc-7","companyId":"co-1"}`)
	})

	tok, err := ghl.ExchangeCode(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, int64(86399), tok.ExpiresIn)
	assert.Equal(t, "loc-7", tok.LocationID)
	assert.Equal(t, "co-1", tok.CompanyID)
}

func TestGhlAdapter_RefreshUsesCompanyUserType(t *testing.T) {
	ghl := newGhl(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "Company", r.PostForm.Get("user_type"))
		assert.Equal(t, "old-rt", r.PostForm.Get("refresh_token"))
		io.WriteString(w, `{"access_token":"new-at","refresh_token":"new-rt","expires_in":3600}`)
	})

	auth := &accountEntity.ProviderAuth{Source: constants.SourceGHL, AccountType: constants.AccountTypeCompany, RefreshToken: "old-rt"}
	set, err := ghl.Refresh(context.Background(), auth)
	require.NoError(t, err)
	assert.Equal(t, &TokenSet{AccessToken: "new-at", RefreshToken: "new-rt", ExpiresIn: 3600}, set)
}

func newCalendly(t *testing.T, handler http.HandlerFunc) (*CalendlyAdapter, string) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCalendlyAdapter(config.CalendlyConfig{
		APIBaseURL:   srv.URL,
		AuthBaseURL:  srv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
	}, 5*time.Second), srv.URL
}

func TestCalendlyAdapter_FetchBookedSlotsFiltersByEventType(t *testing.T) {
	cal, _ := newCalendly(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scheduled_events", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		io.WriteString(w, `{"collection":[
			{"uri":"https://api/scheduled_events/ev-1","status":"active","event_type":"https://api/event_types/et-1",
			 "start_time":"2025-03-10T15:00:00.000000Z","end_time":"2025-03-10T15:30:00.000000Z"},
			{"uri":"https://api/scheduled_events/ev-2","status":"active","event_type":"https://api/event_types/et-2",
			 "start_time":"2025-03-10T16:00:00.000000Z","end_time":"2025-03-10T16:30:00.000000Z"}
		]}`)
	})

	auth := locationAuth(constants.SourceCalendly)
	auth.NativeID = "user-1"
	slots, err := cal.FetchBookedSlots(context.Background(), auth, "et-1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "ev-1", slots[0].EventID)
	assert.Equal(t, "user-1", slots[0].AssignedUserID)
	assert.Equal(t, "user-1", slots[0].LocationID)
	assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC).Unix(), slots[0].StartTime)
}

func TestCalendlyAdapter_MatchSlotStripsMillis(t *testing.T) {
	cal, _ := newCalendly(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("event_type"), "/event_types/et-1")
		io.WriteString(w, `{"collection":[{"status":"available","start_time":"2025-03-10T15:00:00Z","scheduling_url":"https://calendly.com/x"}]}`)
	})

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	slots, err := cal.FetchAvailability(context.Background(), locationAuth(constants.SourceCalendly), "et-1", start, start.Add(30*time.Minute))
	require.NoError(t, err)

	match, ok := cal.MatchSlot(slots, start.Add(500*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "https://calendly.com/x", match.SchedulingURL)
}

func TestCalendlyAdapter_BookingIsUnsupported(t *testing.T) {
	cal, _ := newCalendly(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})

	_, err := cal.CreateAppointment(context.Background(), locationAuth(constants.SourceCalendly), AppointmentInput{})
	assert.True(t, errors.IsCode(err, errors.ErrProviderUnsupported))
	_, err = cal.CreateContact(context.Background(), locationAuth(constants.SourceCalendly), ContactInput{})
	assert.True(t, errors.IsCode(err, errors.ErrProviderUnsupported))
}

func TestCalendlyAdapter_ExchangeCodeReadsOwner(t *testing.T) {
	cal, _ := newCalendly(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_in":7200,"token_type":"Bearer",
			"owner":"https://api.calendly.com/users/user-42","organization":"https://api.calendly.com/organizations/org-1"}`)
	})

	tok, err := cal.ExchangeCode(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "user-42", tok.NativeID())
	assert.Equal(t, int64(7200), tok.ExpiresIn)
	assert.Equal(t, "https://api.calendly.com/organizations/org-1", tok.Organization)
}

func newOnceHub(t *testing.T, handler http.HandlerFunc) *OnceHubAdapter {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOnceHubAdapter(config.OnceHubConfig{APIBaseURL: srv.URL}, "Router", 5*time.Second)
}

func TestOnceHubAdapter_NormalizeCalendarSlugsName(t *testing.T) {
	oh := newOnceHub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("API-Key"))
		io.WriteString(w, `{"id":"BKC-1","name":"Discovery Call","duration":45,"status":"active"}`)
	})

	auth := locationAuth(constants.SourceOnceHub)
	auth.AccessToken = "key-1"
	snap, err := oh.NormalizeCalendar(context.Background(), auth, "BKC-1")
	require.NoError(t, err)
	assert.Equal(t, "discovery-call", snap.Calendar.Slug)
	assert.Equal(t, int64(2700), snap.Calendar.SlotDuration)
	assert.Equal(t, "loc-1", snap.Calendar.LocationID)
}

func TestOnceHubAdapter_MatchSlotKeepsMillis(t *testing.T) {
	oh := newOnceHub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/booking-calendars/BKC-1/time-slots", r.URL.Path)
		io.WriteString(w, `[{"start_time":"2025-03-10T15:00:00.000Z"},{"start_time":"2025-03-10T16:00:00.000Z"}]`)
	})

	start := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	slots, err := oh.FetchAvailability(context.Background(), locationAuth(constants.SourceOnceHub), "BKC-1", start, start.Add(time.Hour))
	require.NoError(t, err)

	_, ok := oh.MatchSlot(slots, start)
	assert.True(t, ok)
	_, ok = oh.MatchSlot(slots, start.Add(time.Minute))
	assert.False(t, ok)
}

func TestOnceHubAdapter_CreateAppointmentReturnsMirroredSlot(t *testing.T) {
	oh := newOnceHub(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-03-10T15:00:00Z", body["start_time"])
		assert.Equal(t, map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"}, body["guest"])
		io.WriteString(w, `{"id":"BKNG-1"}`)
	})

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	appt, err := oh.CreateAppointment(context.Background(), locationAuth(constants.SourceOnceHub), AppointmentInput{
		CalendarID: "BKC-1",
		LocationID: "loc-1",
		Start:      start,
		End:        start.Add(30 * time.Minute),
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, appt.Booked)
	assert.Equal(t, "BKNG-1", appt.Booked.EventID)
	assert.Equal(t, "loc-1", appt.Booked.AssignedUserID)
	assert.Equal(t, start.Add(30*time.Minute).Unix(), appt.Booked.EndTime)
}

func TestOnceHubAdapter_AccountOwner(t *testing.T) {
	oh := newOnceHub(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[
			{"id":"USR-1","first_name":"Sam","last_name":"Lee","role_name":"Member"},
			{"id":"USR-2","first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","role_name":"Account Owner"}
		]}`)
	})

	owner, err := oh.AccountOwner(context.Background(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, "USR-2", owner.ID)
	assert.Equal(t, "Ada Lovelace", owner.Name())
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(newOnceHub(t, func(http.ResponseWriter, *http.Request) {}))

	a, err := r.Get(constants.SourceOnceHub)
	require.NoError(t, err)
	assert.Equal(t, constants.SourceOnceHub, a.Source())

	_, err = r.Get("unknown")
	assert.True(t, errors.IsCode(err, errors.ErrProviderUnsupported))
}
