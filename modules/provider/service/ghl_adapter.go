package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"booking-router/core/config"
	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/utils"
	accountEntity "booking-router/modules/account/entity"
	calendarEntity "booking-router/modules/calendar/entity"

	"golang.org/x/oauth2"
)

const ghlBookedSlotHorizon = 90 * 24 * time.Hour

var dateBucket = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// GhlAdapter talks to the CRM's native calendar API.
type GhlAdapter struct {
	cfg    config.GHLConfig
	api    *apiClient
	tokens TokenProvider
}

func NewGhlAdapter(cfg config.GHLConfig, timeout time.Duration) *GhlAdapter {
	return &GhlAdapter{
		cfg:    cfg,
		api:    newAPIClient(constants.SourceGHL, "GhlAdapter", cfg.APIBaseURL, timeout),
		tokens: StaticTokens{},
	}
}

// WithTokens sets the token provider used before every authenticated call.
func (a *GhlAdapter) WithTokens(tp TokenProvider) *GhlAdapter {
	a.tokens = tp
	return a
}

func (a *GhlAdapter) Source() string { return constants.SourceGHL }

func (a *GhlAdapter) Capabilities() Capabilities {
	return Capabilities{Contacts: true, Appointments: true, OpenHours: true, Availability: TeamMembers}
}

func (a *GhlAdapter) headers(token string) map[string]string {
	return map[string]string{
		"Authorization": bearer(token),
		"Version":       a.cfg.APIVersion,
	}
}

func (a *GhlAdapter) authed(ctx context.Context, auth *accountEntity.ProviderAuth) (map[string]string, error) {
	token, err := a.tokens.AccessToken(ctx, auth)
	if err != nil {
		return nil, err
	}
	return a.headers(token), nil
}

type ghlDuration struct {
	value float64
	unit  string
}

func (d ghlDuration) seconds() int64 {
	unit := d.unit
	if unit == "" {
		unit = "mins"
	}
	return utils.ConvertToSeconds(d.value, unit)
}

type ghlCalendar struct {
	ID               string  `json:"id"`
	LocationID       string  `json:"locationId"`
	GroupID          string  `json:"groupId"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	IsActive         *bool   `json:"isActive"`
	SlotDuration     float64 `json:"slotDuration"`
	SlotDurationUnit string  `json:"slotDurationUnit"`
	SlotInterval     float64 `json:"slotInterval"`
	SlotIntervalUnit string  `json:"slotIntervalUnit"`
	PreBuffer        float64 `json:"preBuffer"`
	PreBufferUnit    string  `json:"preBufferUnit"`
	SlotBuffer       float64 `json:"slotBuffer"`
	SlotBufferUnit   string  `json:"slotBufferUnit"`
	TeamMembers      []struct {
		UserID    string  `json:"userId"`
		Priority  float64 `json:"priority"`
		IsPrimary bool    `json:"isPrimary"`
	} `json:"teamMembers"`
	OpenHours []struct {
		DaysOfTheWeek []int `json:"daysOfTheWeek"`
		Hours         []struct {
			OpenHour    int `json:"openHour"`
			OpenMinute  int `json:"openMinute"`
			CloseHour   int `json:"closeHour"`
			CloseMinute int `json:"closeMinute"`
		} `json:"hours"`
	} `json:"openHours"`
}

func (a *GhlAdapter) NormalizeCalendar(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) (*calendarEntity.CalendarSnapshot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Calendar *ghlCalendar `json:"calendar"`
	}
	err = a.api.do(ctx, request{
		op:      "NormalizeCalendar",
		method:  http.MethodGet,
		path:    "/calendars/" + url.PathEscape(calendarID),
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Calendar == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Calendar data not found", nil)
	}

	c := resp.Calendar
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}
	locationID := c.LocationID
	if locationID == "" {
		locationID = auth.NativeID
	}

	snapshot := &calendarEntity.CalendarSnapshot{
		Calendar: calendarEntity.Calendar{
			CalendarID:   calendarID,
			LocationID:   locationID,
			Name:         c.Name,
			SlotDuration: ghlDuration{c.SlotDuration, c.SlotDurationUnit}.seconds(),
			SlotInterval: ghlDuration{c.SlotInterval, c.SlotIntervalUnit}.seconds(),
			PreBuffer:    ghlDuration{c.PreBuffer, c.PreBufferUnit}.seconds(),
			PostBuffer:   ghlDuration{c.SlotBuffer, c.SlotBufferUnit}.seconds(),
			IsActive:     active,
			GroupID:      c.GroupID,
			Slug:         c.Slug,
		},
	}
	// Hours are in the location's wall-clock time; the calendar sync shifts them to UTC.
	for _, oh := range c.OpenHours {
		for _, day := range oh.DaysOfTheWeek {
			for _, h := range oh.Hours {
				snapshot.OpenHours = append(snapshot.OpenHours, calendarEntity.OpenHour{
					CalendarID:  calendarID,
					DayOfWeek:   day,
					OpenHour:    h.OpenHour,
					OpenMinute:  h.OpenMinute,
					CloseHour:   h.CloseHour,
					CloseMinute: h.CloseMinute,
				})
			}
		}
	}
	for _, m := range c.TeamMembers {
		snapshot.TeamMembers = append(snapshot.TeamMembers, calendarEntity.TeamMember{
			CalendarID: calendarID,
			UserID:     m.UserID,
			Priority:   m.Priority,
			IsPrimary:  m.IsPrimary,
		})
	}
	return snapshot, nil
}

func (a *GhlAdapter) FetchBookedSlots(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) ([]calendarEntity.BookedSlot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var resp struct {
		Events []struct {
			ID                string `json:"id"`
			CalendarID        string `json:"calendarId"`
			LocationID        string `json:"locationId"`
			ContactID         string `json:"contactId"`
			AssignedUserID    string `json:"assignedUserId"`
			AppointmentStatus string `json:"appointmentStatus"`
			StartTime         string `json:"startTime"`
			EndTime           string `json:"endTime"`
		} `json:"events"`
	}
	err = a.api.do(ctx, request{
		op:     "FetchBookedSlots",
		method: http.MethodGet,
		path:   "/calendars/events",
		query: url.Values{
			"locationId": {auth.NativeID},
			"calendarId": {calendarID},
			"startTime":  {strconv.FormatInt(now.UnixMilli(), 10)},
			"endTime":    {strconv.FormatInt(now.Add(ghlBookedSlotHorizon).UnixMilli(), 10)},
		},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}

	slots := make([]calendarEntity.BookedSlot, 0, len(resp.Events))
	for _, e := range resp.Events {
		start, sErr := utils.ParseTimestamp(e.StartTime)
		end, eErr := utils.ParseTimestamp(e.EndTime)
		if sErr != nil || eErr != nil {
			logger.Warn("GhlAdapter:FetchBookedSlots:BadEventTime", "event_id", e.ID, "start", e.StartTime, "end", e.EndTime)
			continue
		}
		slots = append(slots, calendarEntity.BookedSlot{
			EventID:        e.ID,
			CalendarID:     firstNonEmpty(e.CalendarID, calendarID),
			LocationID:     firstNonEmpty(e.LocationID, auth.NativeID),
			AssignedUserID: e.AssignedUserID,
			StartTime:      start.Unix(),
			EndTime:        end.Unix(),
			Status:         e.AppointmentStatus,
			ContactID:      e.ContactID,
		})
	}
	return slots, nil
}

// FetchAvailability returns the free slots bucketed by UTC date.
func (a *GhlAdapter) FetchAvailability(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string, start, end time.Time) ([]Slot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp map[string]json.RawMessage
	err = a.api.do(ctx, request{
		op:     "FetchAvailability",
		method: http.MethodGet,
		path:   "/calendars/" + url.PathEscape(calendarID) + "/free-slots",
		query: url.Values{
			"startDate": {strconv.FormatInt(start.UnixMilli(), 10)},
			"endDate":   {strconv.FormatInt(end.UnixMilli(), 10)},
			"timezone":  {"GMT"},
		},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}

	var slots []Slot
	for date, raw := range resp {
		if !dateBucket.MatchString(date) {
			continue
		}
		var bucket struct {
			Slots []string `json:"slots"`
		}
		if err := json.Unmarshal(raw, &bucket); err != nil {
			continue
		}
		for _, s := range bucket.Slots {
			slots = append(slots, Slot{Date: date, StartTime: s})
		}
	}
	return slots, nil
}

// MatchSlot looks for the second-precision start in the request's date bucket.
func (a *GhlAdapter) MatchSlot(slots []Slot, start time.Time) (*Slot, bool) {
	want := utils.FormatISOSeconds(start)
	date := start.UTC().Format(utils.DateLayout)
	for i := range slots {
		if slots[i].Date == date && slots[i].StartTime == want {
			return &slots[i], true
		}
	}
	return nil, false
}

func (a *GhlAdapter) CreateContact(ctx context.Context, auth *accountEntity.ProviderAuth, in ContactInput) (*Contact, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"firstName":  in.FirstName,
		"lastName":   in.LastName,
		"email":      in.Email,
		"phone":      in.Phone,
		"locationId": in.LocationID,
		"source":     a.cfg.AppName,
	}
	if in.CustomFieldID != "" {
		utm, mErr := json.Marshal(in.UTMParams)
		if mErr != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid utm params", mErr)
		}
		body["customFields"] = []map[string]string{{"id": in.CustomFieldID, "value": string(utm)}}
	}

	var resp struct {
		Contact *Contact `json:"contact"`
	}
	err = a.api.do(ctx, request{
		op:      "CreateContact",
		method:  http.MethodPost,
		path:    "/contacts/",
		headers: headers,
		body:    body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Contact == nil {
		return &Contact{}, nil
	}
	return resp.Contact, nil
}

// CreateAppointment books the window rendered in the location's timezone.
// The mirrored booked slot arrives later through the AppointmentCreate webhook.
func (a *GhlAdapter) CreateAppointment(ctx context.Context, auth *accountEntity.ProviderAuth, in AppointmentInput) (*Appointment, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(in.Timezone)
	if err != nil {
		logger.Warn("GhlAdapter:CreateAppointment:UnknownTimezone", "timezone", in.Timezone, "error", err)
		loc = time.UTC
	}

	var resp struct {
		ID string `json:"id"`
	}
	err = a.api.do(ctx, request{
		op:      "CreateAppointment",
		method:  http.MethodPost,
		path:    "/calendars/events/appointments",
		headers: headers,
		body: map[string]string{
			"calendarId": in.CalendarID,
			"locationId": in.LocationID,
			"contactId":  in.ContactID,
			"startTime":  in.Start.In(loc).Format(time.RFC3339),
			"endTime":    in.End.In(loc).Format(time.RFC3339),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &Appointment{ID: resp.ID}, nil
}

func (a *GhlAdapter) ListCalendars(ctx context.Context, auth *accountEntity.ProviderAuth) ([]CalendarSummary, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Calendars []CalendarSummary `json:"calendars"`
	}
	err = a.api.do(ctx, request{
		op:      "ListCalendars",
		method:  http.MethodGet,
		path:    "/calendars/",
		query:   url.Values{"locationId": {auth.NativeID}},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Calendars, nil
}

// GhlToken is a token grant; LocationID is empty for agency installs.
type GhlToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	LocationID   string `json:"locationId"`
	CompanyID    string `json:"companyId"`
	UserType     string `json:"userType"`
}

func (a *GhlAdapter) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  a.cfg.RedirectURI,
		Scopes:       a.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.cfg.AuthBaseURL + "/oauth/chooselocation",
			TokenURL:  a.api.baseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (a *GhlAdapter) AuthorizeURL(state string) string {
	return a.oauthConfig().AuthCodeURL(state)
}

// ExchangeCode runs the authorization-code grant for an install.
func (a *GhlAdapter) ExchangeCode(ctx context.Context, code string) (*GhlToken, error) {
	started := time.Now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.api.client)
	tok, err := a.oauthConfig().Exchange(ctx, code, oauth2.SetAuthURLParam("user_type", "Location"))
	observeOAuth(constants.SourceGHL, "ExchangeCode", started, err)
	if err != nil {
		logger.Error("GhlAdapter:ExchangeCode:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrProviderRequest, "failed to exchange token", err)
	}
	return &GhlToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn(tok),
		LocationID:   extraString(tok, "locationId"),
		CompanyID:    extraString(tok, "companyId"),
		UserType:     extraString(tok, "userType"),
	}, nil
}

// Refresh runs the refresh grant for a location or company token.
func (a *GhlAdapter) Refresh(ctx context.Context, auth *accountEntity.ProviderAuth) (*TokenSet, error) {
	userType := "Location"
	if auth.AccountType == constants.AccountTypeCompany {
		userType = "Company"
	}
	var tok GhlToken
	err := a.api.do(ctx, request{
		op:     "Refresh",
		method: http.MethodPost,
		path:   "/oauth/token",
		form: url.Values{
			"client_id":     {a.cfg.ClientID},
			"client_secret": {a.cfg.ClientSecret},
			"grant_type":    {"refresh_token"},
			"refresh_token": {auth.RefreshToken},
			"user_type":     {userType},
		},
	}, &tok)
	if err != nil {
		return nil, err
	}
	return &TokenSet{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken, ExpiresIn: tok.ExpiresIn}, nil
}

// LocationToken trades an agency token for a sub-account token.
func (a *GhlAdapter) LocationToken(ctx context.Context, companyToken, companyID, locationID string) (*GhlToken, error) {
	var tok GhlToken
	err := a.api.do(ctx, request{
		op:      "LocationToken",
		method:  http.MethodPost,
		path:    "/oauth/locationToken",
		headers: a.headers(companyToken),
		form:    url.Values{"companyId": {companyID}, "locationId": {locationID}},
	}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

type GhlLocation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CompanyID string `json:"companyId"`
	Timezone  string `json:"timezone"`
}

func (a *GhlAdapter) GetLocation(ctx context.Context, token, locationID string) (*GhlLocation, error) {
	var resp struct {
		Location *GhlLocation `json:"location"`
	}
	err := a.api.do(ctx, request{
		op:      "GetLocation",
		method:  http.MethodGet,
		path:    "/locations/" + url.PathEscape(locationID),
		headers: a.headers(token),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Location == nil {
		return &GhlLocation{ID: locationID}, nil
	}
	return resp.Location, nil
}

type GhlCompany struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (a *GhlAdapter) GetCompany(ctx context.Context, token, companyID string) (*GhlCompany, error) {
	var resp struct {
		Company *GhlCompany `json:"company"`
	}
	err := a.api.do(ctx, request{
		op:      "GetCompany",
		method:  http.MethodGet,
		path:    "/companies/" + url.PathEscape(companyID),
		headers: a.headers(token),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Company == nil {
		return &GhlCompany{ID: companyID}, nil
	}
	return resp.Company, nil
}

// CreateCustomField adds the contact field the UTM payload is stored in.
func (a *GhlAdapter) CreateCustomField(ctx context.Context, token, locationID string) (string, error) {
	var resp struct {
		CustomField struct {
			ID string `json:"id"`
		} `json:"customField"`
	}
	err := a.api.do(ctx, request{
		op:      "CreateCustomField",
		method:  http.MethodPost,
		path:    "/locations/" + url.PathEscape(locationID) + "/customFields",
		headers: a.headers(token),
		body: map[string]string{
			"name":     "UTM Parameters",
			"dataType": "LARGE_TEXT",
			"model":    "contact",
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.CustomField.ID, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
