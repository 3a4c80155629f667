package service

import (
	"context"
	"net/http"
	"net/url"
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

// CalendlyAdapter maps Calendly event types onto mirrored calendars. Each
// connection is a single scheduler, so there are no team members or open hours.
type CalendlyAdapter struct {
	cfg    config.CalendlyConfig
	api    *apiClient
	tokens TokenProvider
}

func NewCalendlyAdapter(cfg config.CalendlyConfig, timeout time.Duration) *CalendlyAdapter {
	return &CalendlyAdapter{
		cfg:    cfg,
		api:    newAPIClient(constants.SourceCalendly, "CalendlyAdapter", cfg.APIBaseURL, timeout),
		tokens: StaticTokens{},
	}
}

func (a *CalendlyAdapter) WithTokens(tp TokenProvider) *CalendlyAdapter {
	a.tokens = tp
	return a
}

func (a *CalendlyAdapter) Source() string { return constants.SourceCalendly }

func (a *CalendlyAdapter) Capabilities() Capabilities {
	return Capabilities{Availability: SingleUser}
}

func (a *CalendlyAdapter) authed(ctx context.Context, auth *accountEntity.ProviderAuth) (map[string]string, error) {
	token, err := a.tokens.AccessToken(ctx, auth)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": bearer(token)}, nil
}

func (a *CalendlyAdapter) userURI(nativeID string) string {
	return a.api.baseURL + "/users/" + nativeID
}

func (a *CalendlyAdapter) eventTypeURI(id string) string {
	return a.api.baseURL + "/event_types/" + id
}

func (a *CalendlyAdapter) NormalizeCalendar(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) (*calendarEntity.CalendarSnapshot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Resource *struct {
			Name          string  `json:"name"`
			Duration      float64 `json:"duration"`
			Active        *bool   `json:"active"`
			Slug          string  `json:"slug"`
			SchedulingURL string  `json:"scheduling_url"`
		} `json:"resource"`
	}
	err = a.api.do(ctx, request{
		op:      "NormalizeCalendar",
		method:  http.MethodGet,
		path:    "/event_types/" + url.PathEscape(calendarID),
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Resource == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Calendar data not found", nil)
	}

	r := resp.Resource
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	duration := utils.ConvertToSeconds(r.Duration, "mins")
	return &calendarEntity.CalendarSnapshot{
		Calendar: calendarEntity.Calendar{
			CalendarID:   calendarID,
			LocationID:   auth.NativeID,
			Name:         r.Name,
			SlotDuration: duration,
			SlotInterval: duration,
			IsActive:     active,
			Slug:         r.Slug,
		},
	}, nil
}

func (a *CalendlyAdapter) FetchBookedSlots(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string) ([]calendarEntity.BookedSlot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Collection []struct {
			URI       string `json:"uri"`
			Status    string `json:"status"`
			EventType string `json:"event_type"`
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
		} `json:"collection"`
	}
	err = a.api.do(ctx, request{
		op:     "FetchBookedSlots",
		method: http.MethodGet,
		path:   "/scheduled_events",
		query: url.Values{
			"user":           {a.userURI(auth.NativeID)},
			"status":         {"active"},
			"min_start_time": {utils.FormatISOSeconds(time.Now())},
			"count":          {"100"},
		},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}

	slots := make([]calendarEntity.BookedSlot, 0, len(resp.Collection))
	for _, e := range resp.Collection {
		eventCalendar := utils.LastPathSegment(e.EventType)
		if calendarID != "" && eventCalendar != calendarID {
			continue
		}
		start, sErr := utils.ParseTimestamp(e.StartTime)
		end, eErr := utils.ParseTimestamp(e.EndTime)
		if sErr != nil || eErr != nil {
			logger.Warn("CalendlyAdapter:FetchBookedSlots:BadEventTime", "event", e.URI)
			continue
		}
		slots = append(slots, calendarEntity.BookedSlot{
			EventID:        utils.LastPathSegment(e.URI),
			CalendarID:     eventCalendar,
			LocationID:     auth.NativeID,
			AssignedUserID: auth.NativeID,
			StartTime:      start.Unix(),
			EndTime:        end.Unix(),
			Status:         e.Status,
		})
	}
	return slots, nil
}

func (a *CalendlyAdapter) FetchAvailability(ctx context.Context, auth *accountEntity.ProviderAuth, calendarID string, start, end time.Time) ([]Slot, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Collection []struct {
			Status        string `json:"status"`
			StartTime     string `json:"start_time"`
			SchedulingURL string `json:"scheduling_url"`
		} `json:"collection"`
	}
	err = a.api.do(ctx, request{
		op:     "FetchAvailability",
		method: http.MethodGet,
		path:   "/event_type_available_times",
		query: url.Values{
			"event_type": {a.eventTypeURI(calendarID)},
			"start_time": {utils.FormatISOSeconds(start)},
			"end_time":   {utils.FormatISOSeconds(end)},
		},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(resp.Collection))
	for _, s := range resp.Collection {
		date := ""
		if t, pErr := utils.ParseTimestamp(s.StartTime); pErr == nil {
			date = t.UTC().Format(utils.DateLayout)
		}
		slots = append(slots, Slot{
			Date:          date,
			StartTime:     s.StartTime,
			SchedulingURL: s.SchedulingURL,
			Status:        s.Status,
		})
	}
	return slots, nil
}

// MatchSlot compares against the requested start with milliseconds stripped.
func (a *CalendlyAdapter) MatchSlot(slots []Slot, start time.Time) (*Slot, bool) {
	want := utils.FormatISOSeconds(start)
	for i := range slots {
		if slots[i].StartTime == want {
			return &slots[i], true
		}
	}
	return nil, false
}

func (a *CalendlyAdapter) CreateContact(context.Context, *accountEntity.ProviderAuth, ContactInput) (*Contact, error) {
	return nil, errors.NewAppError(errors.ErrProviderUnsupported, "Calendly does not support contacts", nil)
}

// CreateAppointment is unsupported: Calendly bookings are made by the invitee
// on the scheduling page.
func (a *CalendlyAdapter) CreateAppointment(context.Context, *accountEntity.ProviderAuth, AppointmentInput) (*Appointment, error) {
	return nil, errors.NewAppError(errors.ErrProviderUnsupported, "Calendly does not support direct booking", nil)
}

func (a *CalendlyAdapter) ListCalendars(ctx context.Context, auth *accountEntity.ProviderAuth) ([]CalendarSummary, error) {
	headers, err := a.authed(ctx, auth)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Collection []struct {
			URI  string `json:"uri"`
			Name string `json:"name"`
		} `json:"collection"`
	}
	err = a.api.do(ctx, request{
		op:     "ListCalendars",
		method: http.MethodGet,
		path:   "/event_types",
		query: url.Values{
			"user":   {a.userURI(auth.NativeID)},
			"active": {"true"},
			"count":  {"100"},
		},
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}

	calendars := make([]CalendarSummary, 0, len(resp.Collection))
	for _, et := range resp.Collection {
		calendars = append(calendars, CalendarSummary{ID: utils.LastPathSegment(et.URI), Name: et.Name})
	}
	return calendars, nil
}

type CalendlyToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Owner        string
	Organization string
}

// NativeID is the owner's user uuid.
func (t *CalendlyToken) NativeID() string {
	return utils.LastPathSegment(t.Owner)
}

func (a *CalendlyAdapter) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  a.cfg.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.cfg.AuthBaseURL + "/oauth/authorize",
			TokenURL:  a.cfg.AuthBaseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (a *CalendlyAdapter) AuthorizeURL(state string) string {
	return a.oauthConfig().AuthCodeURL(state)
}

func (a *CalendlyAdapter) ExchangeCode(ctx context.Context, code string) (*CalendlyToken, error) {
	started := time.Now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.api.client)
	tok, err := a.oauthConfig().Exchange(ctx, code)
	observeOAuth(constants.SourceCalendly, "ExchangeCode", started, err)
	if err != nil {
		logger.Error("CalendlyAdapter:ExchangeCode:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrProviderRequest, "failed to exchange token", err)
	}
	return &CalendlyToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn(tok),
		Owner:        extraString(tok, "owner"),
		Organization: extraString(tok, "organization"),
	}, nil
}

// Refresh forces a refresh grant by handing the token source an expired token.
func (a *CalendlyAdapter) Refresh(ctx context.Context, auth *accountEntity.ProviderAuth) (*TokenSet, error) {
	started := time.Now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.api.client)
	stale := &oauth2.Token{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		Expiry:       time.Unix(1, 0),
	}
	tok, err := a.oauthConfig().TokenSource(ctx, stale).Token()
	observeOAuth(constants.SourceCalendly, "Refresh", started, err)
	if err != nil {
		logger.Error("CalendlyAdapter:Refresh:Error", "error", err, "native_id", auth.NativeID)
		return nil, errors.NewAppError(errors.ErrProviderRequest, "failed to refresh token", err)
	}
	return &TokenSet{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken, ExpiresIn: expiresIn(tok)}, nil
}

type CalendlyUser struct {
	URI           string `json:"uri"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Timezone      string `json:"timezone"`
	Slug          string `json:"slug"`
	SchedulingURL string `json:"scheduling_url"`
}

func (a *CalendlyAdapter) CurrentUser(ctx context.Context, token string) (*CalendlyUser, error) {
	var resp struct {
		Resource *CalendlyUser `json:"resource"`
	}
	err := a.api.do(ctx, request{
		op:      "CurrentUser",
		method:  http.MethodGet,
		path:    "/users/me",
		headers: map[string]string{"Authorization": bearer(token)},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Resource == nil {
		return nil, errors.NewAppError(errors.ErrProviderRequest, "Calendly user not found", nil)
	}
	return resp.Resource, nil
}

// CreateWebhookSubscription subscribes callbackURL to the user's invitee events.
func (a *CalendlyAdapter) CreateWebhookSubscription(ctx context.Context, token *CalendlyToken, callbackURL string) error {
	err := a.api.do(ctx, request{
		op:      "CreateWebhookSubscription",
		method:  http.MethodPost,
		path:    "/webhook_subscriptions",
		headers: map[string]string{"Authorization": bearer(token.AccessToken)},
		body: map[string]any{
			"url":          callbackURL,
			"events":       []string{"invitee.created", "invitee.canceled"},
			"organization": token.Organization,
			"user":         token.Owner,
			"scope":        "user",
		},
	}, nil)
	if errors.IsCode(err, errors.ErrProviderRequest) {
		// Calendly answers 409 when the subscription already exists.
		logger.Warn("CalendlyAdapter:CreateWebhookSubscription:Failed", "error", err, "owner", token.Owner)
	}
	return err
}
