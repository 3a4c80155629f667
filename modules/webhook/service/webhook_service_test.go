package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"booking-router/core/constants"
	"booking-router/core/errors"
	accountEntity "booking-router/modules/account/entity"
	calendarEntity "booking-router/modules/calendar/entity"
	providerService "booking-router/modules/provider/service"
	"booking-router/modules/webhook/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	companyAuth *accountEntity.ProviderAuth
	existing    map[string]bool
	auths       []accountEntity.ProviderAuth
	accounts    []accountEntity.Account
	deactivated []string
}

func (f *fakeAccounts) GetCompanyAuth(context.Context, string) (*accountEntity.ProviderAuth, error) {
	return f.companyAuth, nil
}

func (f *fakeAccounts) UpsertAuth(_ context.Context, auth *accountEntity.ProviderAuth) (bool, error) {
	auth.ID = uuid.New()
	f.auths = append(f.auths, *auth)
	return !f.existing[auth.NativeID], nil
}

func (f *fakeAccounts) UpsertAccountProfile(_ context.Context, account *accountEntity.Account) error {
	f.accounts = append(f.accounts, *account)
	return nil
}

func (f *fakeAccounts) DeactivateByNativeID(_ context.Context, nativeID string) (int64, error) {
	f.deactivated = append(f.deactivated, "native:"+nativeID)
	return 1, nil
}

func (f *fakeAccounts) DeactivateByCompanyID(_ context.Context, companyID string) (int64, error) {
	f.deactivated = append(f.deactivated, "company:"+companyID)
	return 2, nil
}

type fakeSlots struct {
	upserted []calendarEntity.BookedSlot
	deleted  []string
}

func (f *fakeSlots) UpsertBookedSlot(_ context.Context, slot *calendarEntity.BookedSlot) error {
	f.upserted = append(f.upserted, *slot)
	return nil
}

func (f *fakeSlots) DeleteBookedSlot(_ context.Context, eventID string) (int64, error) {
	f.deleted = append(f.deleted, eventID)
	return 1, nil
}

type fakeInstaller struct {
	companyToken string
	fieldErr     error
}

func (f *fakeInstaller) LocationToken(_ context.Context, companyToken, _, locationID string) (*providerService.GhlToken, error) {
	f.companyToken = companyToken
	return &providerService.GhlToken{AccessToken: "loc-at", RefreshToken: "loc-rt", ExpiresIn: 86399, LocationID: locationID}, nil
}

func (f *fakeInstaller) GetLocation(_ context.Context, _, locationID string) (*providerService.GhlLocation, error) {
	return &providerService.GhlLocation{ID: locationID, Name: "Uptown", Timezone: "America/Denver"}, nil
}

func (f *fakeInstaller) CreateCustomField(context.Context, string, string) (string, error) {
	if f.fieldErr != nil {
		return "", f.fieldErr
	}
	return "cf-1", nil
}

type fakeTokens struct{}

func (fakeTokens) AccessToken(_ context.Context, auth *accountEntity.ProviderAuth) (string, error) {
	return "fresh-" + auth.AccessToken, nil
}

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newWebhookFixture() (*webhookService, *fakeAccounts, *fakeSlots, *fakeInstaller) {
	accounts := &fakeAccounts{existing: map[string]bool{}}
	slots := &fakeSlots{}
	ghl := &fakeInstaller{}
	svc := NewWebhookService(accounts, slots, ghl, fakeTokens{}).(*webhookService)
	svc.now = func() time.Time { return fixedNow }
	return svc, accounts, slots, ghl
}

func decode(t *testing.T, body string) *dto.WebhookPayload {
	var p dto.WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return &p
}

func TestHandle_UnknownType(t *testing.T) {
	svc, _, _, _ := newWebhookFixture()

	_, appErr := svc.Handle(context.Background(), decode(t, `{"type":"ContactCreate"}`))

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	assert.Equal(t, "Unhandled webhook type.", appErr.Message)
}

func TestInstall_CreatesLocationAccount(t *testing.T) {
	svc, accounts, _, ghl := newWebhookFixture()
	accounts.companyAuth = &accountEntity.ProviderAuth{AccessToken: "co-at", AccountType: constants.AccountTypeCompany}

	msg, appErr := svc.Handle(context.Background(), decode(t, `{"type":"INSTALL","installType":"Location","locationId":"loc-7","companyId":"co-1"}`))

	require.Nil(t, appErr)
	assert.Equal(t, "Token generated and saved successfully.", msg)
	assert.Equal(t, "fresh-co-at", ghl.companyToken)
	require.Len(t, accounts.auths, 1)
	assert.Equal(t, "loc-7", accounts.auths[0].NativeID)
	assert.Equal(t, "loc-at", accounts.auths[0].AccessToken)
	assert.Equal(t, constants.AccountTypeLocation, accounts.auths[0].AccountType)

	require.Len(t, accounts.accounts, 1)
	assert.Equal(t, "cf-1", accounts.accounts[0].CustomFieldID)
	assert.Equal(t, "America/Denver", accounts.accounts[0].Timezone)
	assert.Equal(t, "co-1", accounts.accounts[0].CompanyID)
}

func TestInstall_CustomFieldFailureStillCreatesAccount(t *testing.T) {
	svc, accounts, _, ghl := newWebhookFixture()
	accounts.companyAuth = &accountEntity.ProviderAuth{AccessToken: "co-at"}
	ghl.fieldErr = errors.NewAppError(errors.ErrProviderRequest, "boom", nil)

	_, appErr := svc.Handle(context.Background(), decode(t, `{"type":"INSTALL","installType":"Location","locationId":"loc-7","companyId":"co-1"}`))

	require.Nil(t, appErr)
	require.Len(t, accounts.accounts, 1)
	assert.Empty(t, accounts.accounts[0].CustomFieldID)
}

func TestInstall_Rejections(t *testing.T) {
	svc, accounts, _, _ := newWebhookFixture()

	_, appErr := svc.Handle(context.Background(), decode(t, `{"type":"INSTALL","installType":"Company","companyId":"co-1"}`))
	require.NotNil(t, appErr)
	assert.Equal(t, "Ignoring non-location webhook.", appErr.Message)

	_, appErr = svc.Handle(context.Background(), decode(t, `{"type":"INSTALL","installType":"Location","locationId":"loc-7","companyId":"co-1"}`))
	require.NotNil(t, appErr)
	assert.Equal(t, "Access token not found.", appErr.Message)
	assert.Empty(t, accounts.auths)
}

func TestInstall_ExistingLocationOnlyRefreshesTokens(t *testing.T) {
	svc, accounts, _, _ := newWebhookFixture()
	accounts.companyAuth = &accountEntity.ProviderAuth{AccessToken: "co-at"}
	accounts.existing["loc-7"] = true

	_, appErr := svc.Handle(context.Background(), decode(t, `{"type":"INSTALL","installType":"Location","locationId":"loc-7","companyId":"co-1"}`))

	require.Nil(t, appErr)
	assert.Len(t, accounts.auths, 1)
	assert.Empty(t, accounts.accounts)
}

func TestUninstall(t *testing.T) {
	svc, accounts, _, _ := newWebhookFixture()

	_, appErr := svc.Handle(context.Background(), decode(t, `{"type":"UNINSTALL","locationId":"loc-7","companyId":"co-1"}`))
	require.Nil(t, appErr)
	_, appErr = svc.Handle(context.Background(), decode(t, `{"type":"UNINSTALL","companyId":"co-1"}`))
	require.Nil(t, appErr)

	assert.Equal(t, []string{"native:loc-7", "company:co-1"}, accounts.deactivated)
}

func TestAppointmentCreate(t *testing.T) {
	svc, _, slots, _ := newWebhookFixture()

	msg, appErr := svc.Handle(context.Background(), decode(t, `{"type":"AppointmentCreate","locationId":"loc-1",
		"appointment":{"id":"ev-1","calendarId":"cal-1","contactId":"ct-1","assignedUserId":"u-1",
		"startTime":"2026-03-01T10:00:00+00:00","endTime":"2026-03-01T10:30:00+00:00","appointmentStatus":"confirmed"}}`))

	require.Nil(t, appErr)
	assert.Equal(t, "Data saved successfully", msg)
	require.Len(t, slots.upserted, 1)
	slot := slots.upserted[0]
	assert.Equal(t, "ev-1", slot.EventID)
	assert.Equal(t, "loc-1", slot.LocationID)
	assert.Equal(t, "u-1", slot.AssignedUserID)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Unix(), slot.StartTime)
	assert.Equal(t, int64(1800), slot.EndTime-slot.StartTime)
}

func TestAppointmentUpdateAndDelete_RejectPast(t *testing.T) {
	svc, _, slots, _ := newWebhookFixture()
	past := `"startTime":"2026-03-02T11:00:00Z","endTime":"2026-03-02T11:30:00Z"`
	future := `"startTime":"2026-03-03T11:00:00Z","endTime":"2026-03-03T11:30:00Z"`

	_, appErr := svc.Handle(context.Background(), decode(t, `{"type":"AppointmentUpdate","appointment":{"id":"ev-1",`+past+`}}`))
	require.NotNil(t, appErr)
	assert.Equal(t, "Invalid or past appointment time or missing event ID.", appErr.Message)

	_, appErr = svc.Handle(context.Background(), decode(t, `{"type":"AppointmentDelete","appointment":{"id":"ev-1",`+past+`}}`))
	require.NotNil(t, appErr)
	assert.Equal(t, "Cannot delete a past or ongoing appointment.", appErr.Message)

	_, appErr = svc.Handle(context.Background(), decode(t, `{"type":"AppointmentUpdate","appointment":{"id":"ev-1",`+future+`}}`))
	require.Nil(t, appErr)
	_, appErr = svc.Handle(context.Background(), decode(t, `{"type":"AppointmentDelete","appointment":{"id":"ev-1",`+future+`}}`))
	require.Nil(t, appErr)

	assert.Len(t, slots.upserted, 1)
	assert.Equal(t, []string{"ev-1"}, slots.deleted)
}

func TestCalendlyInvitee(t *testing.T) {
	svc, _, slots, _ := newWebhookFixture()
	event := `"scheduled_event":{"uri":"https://api.calendly.com/scheduled_events/SE-1",
		"event_type":"https://api.calendly.com/event_types/ET-1","status":"active",
		"start_time":"2026-03-04T15:00:00.000000Z","end_time":"2026-03-04T15:30:00.000000Z",
		"event_memberships":[{"user":"https://api.calendly.com/users/USER-9"}]}`

	_, appErr := svc.Handle(context.Background(), decode(t, `{"event":"invitee.created","payload":{`+event+`}}`))
	require.Nil(t, appErr)
	require.Len(t, slots.upserted, 1)
	assert.Equal(t, "SE-1", slots.upserted[0].EventID)
	assert.Equal(t, "ET-1", slots.upserted[0].CalendarID)
	assert.Equal(t, "USER-9", slots.upserted[0].AssignedUserID)

	_, appErr = svc.Handle(context.Background(), decode(t, `{"event":"invitee.canceled","payload":{`+event+`}}`))
	require.Nil(t, appErr)
	assert.Equal(t, []string{"SE-1"}, slots.deleted)
}

func TestOnceHubBooking(t *testing.T) {
	svc, _, slots, _ := newWebhookFixture()
	booking := `"data":{"id":"BKNG-1","status":"scheduled","booking_calendar":"BKC-1","owner":"USR-1",
		"starting_time":"2026-03-05T09:00:00Z","duration_minutes":45}`

	_, appErr := svc.Handle(context.Background(), decode(t, `{"type":"booking.scheduled",`+booking+`}`))
	require.Nil(t, appErr)
	require.Len(t, slots.upserted, 1)
	assert.Equal(t, "BKC-1", slots.upserted[0].CalendarID)
	assert.Equal(t, "USR-1", slots.upserted[0].AssignedUserID)
	assert.Equal(t, int64(45*60), slots.upserted[0].EndTime-slots.upserted[0].StartTime)

	_, appErr = svc.Handle(context.Background(), decode(t, `{"type":"booking.canceled",`+booking+`}`))
	require.Nil(t, appErr)
	assert.Equal(t, []string{"BKNG-1"}, slots.deleted)
}
