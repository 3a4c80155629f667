package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"booking-router/core/cache"
	"booking-router/core/constants"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/utils"
	accountEntity "booking-router/modules/account/entity"
	"booking-router/modules/auth/dto"
	providerService "booking-router/modules/provider/service"

	"github.com/google/uuid"
)

type GhlOAuth interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*providerService.GhlToken, error)
	GetLocation(ctx context.Context, token, locationID string) (*providerService.GhlLocation, error)
	GetCompany(ctx context.Context, token, companyID string) (*providerService.GhlCompany, error)
}

type CalendlyOAuth interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*providerService.CalendlyToken, error)
	CurrentUser(ctx context.Context, token string) (*providerService.CalendlyUser, error)
	CreateWebhookSubscription(ctx context.Context, token *providerService.CalendlyToken, callbackURL string) error
}

type OnceHubConnector interface {
	AccountOwner(ctx context.Context, apiKey string) (*providerService.OnceHubUser, error)
	CreateWebhook(ctx context.Context, apiKey, callbackURL string) error
}

// AuthStore is the slice of the account repository the connect flows write to.
type AuthStore interface {
	UpsertAuth(ctx context.Context, auth *accountEntity.ProviderAuth) (bool, error)
	UpsertAccountProfile(ctx context.Context, account *accountEntity.Account) error
	GetUserByEmail(ctx context.Context, email string) (*accountEntity.User, error)
	CreateUser(ctx context.Context, user *accountEntity.User) error
}

type Options struct {
	JWTSecret   string
	JWTTTL      time.Duration
	RedirectURL string // dashboard landing page after a connect
	AppURL      string // public base URL webhooks are registered against
}

type AuthService interface {
	InitiateGHL(ctx context.Context) (string, *errors.AppError)
	GHLCallback(ctx context.Context, code, state string) (string, *errors.AppError)
	InitiateCalendly(ctx context.Context) (string, *errors.AppError)
	CalendlyCallback(ctx context.Context, code, state string) (string, *errors.AppError)
	ConnectOnceHub(ctx context.Context, req *dto.OnceHubConnectRequest) (*dto.OnceHubConnectResponse, *errors.AppError)
	Signin(ctx context.Context, req *dto.SigninRequest) (*dto.SigninResponse, *errors.AppError)
	Signout(ctx context.Context, token string) *errors.AppError
	FailureRedirect(description string) string
}

type authService struct {
	store    AuthStore
	cache    cache.Cache
	ghl      GhlOAuth
	calendly CalendlyOAuth
	onceHub  OnceHubConnector
	mailer   utils.Mailer
	opts     Options
}

func NewAuthService(store AuthStore, c cache.Cache, ghl GhlOAuth, calendly CalendlyOAuth, onceHub OnceHubConnector, mailer utils.Mailer, opts Options) AuthService {
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = time.Hour
	}
	return &authService{
		store:    store,
		cache:    c,
		ghl:      ghl,
		calendly: calendly,
		onceHub:  onceHub,
		mailer:   mailer,
		opts:     opts,
	}
}

func (s *authService) successRedirect(clientID uuid.UUID) string {
	q := url.Values{"status": {"success"}, "client_id": {clientID.String()}}
	return s.opts.RedirectURL + "?" + q.Encode()
}

func (s *authService) FailureRedirect(description string) string {
	q := url.Values{"status": {"error"}}
	if description != "" {
		q.Set("error_description", description)
	}
	return s.opts.RedirectURL + "?" + q.Encode()
}

func (s *authService) webhookURL() string {
	return strings.TrimRight(s.opts.AppURL, "/") + "/webhook"
}

func (s *authService) newState(ctx context.Context, source string) (string, *errors.AppError) {
	state := utils.GenerateState()
	if state == "" {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to generate state", nil)
	}
	if err := s.cache.Set(ctx, constants.CachePrefixOAuthState+state, source, constants.OAuthStateTTL); err != nil {
		logger.Error("AuthService:NewState:Set:Error", "error", err)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to store state", err)
	}
	return state, nil
}

// consumeState accepts a state once, and only for the provider that issued it.
func (s *authService) consumeState(ctx context.Context, state, source string) *errors.AppError {
	if state == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "missing state", nil)
	}
	key := constants.CachePrefixOAuthState + state
	stored, err := s.cache.Get(ctx, key)
	if err == cache.ErrCacheMiss || (err == nil && stored != source) {
		return errors.NewAppError(errors.ErrUnauthorized, "unknown or expired state", nil)
	}
	if err != nil {
		logger.Error("AuthService:ConsumeState:Get:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to read state", err)
	}
	if err := s.cache.Del(ctx, key); err != nil {
		logger.Warn("AuthService:ConsumeState:Del:Error", "error", err)
	}
	return nil
}

func (s *authService) InitiateGHL(ctx context.Context) (string, *errors.AppError) {
	state, appErr := s.newState(ctx, constants.SourceGHL)
	if appErr != nil {
		return "", appErr
	}
	return s.ghl.AuthorizeURL(state), nil
}

// GHLCallback stores a location or agency install. A first-time location gets
// an account row from its profile; a first-time agency gets a dashboard user.
func (s *authService) GHLCallback(ctx context.Context, code, state string) (string, *errors.AppError) {
	if appErr := s.consumeState(ctx, state, constants.SourceGHL); appErr != nil {
		return s.FailureRedirect(appErr.Message), appErr
	}

	tok, err := s.ghl.ExchangeCode(ctx, code)
	if err != nil {
		return s.FailureRedirect(""), asAppError(err, "failed to exchange token")
	}

	auth := &accountEntity.ProviderAuth{
		Source:       constants.SourceGHL,
		AccountType:  constants.AccountTypeLocation,
		NativeID:     tok.LocationID,
		CompanyID:    tok.CompanyID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		IsActive:     true,
	}
	if tok.LocationID == "" {
		auth.AccountType = constants.AccountTypeCompany
		auth.NativeID = tok.CompanyID
	}
	if auth.NativeID == "" {
		return s.FailureRedirect(""), errors.NewAppError(errors.ErrProviderRequest, "token grant carried no location or company", nil)
	}

	inserted, err := s.store.UpsertAuth(ctx, auth)
	if err != nil {
		return s.FailureRedirect(""), errors.NewAppError(errors.ErrDatabase, "failed to save auth", err)
	}
	logger.Info("AuthService:GHLCallback:AuthSaved", "native_id", auth.NativeID, "account_type", auth.AccountType, "inserted", inserted)
	if !inserted {
		return s.successRedirect(auth.ID), nil
	}

	account := &accountEntity.Account{AuthID: &auth.ID, NativeID: auth.NativeID, Timezone: "UTC"}
	if auth.AccountType == constants.AccountTypeLocation {
		loc, err := s.ghl.GetLocation(ctx, tok.AccessToken, tok.LocationID)
		if err != nil {
			logger.Warn("AuthService:GHLCallback:GetLocation:Error", "error", err, "location_id", tok.LocationID)
			loc = &providerService.GhlLocation{ID: tok.LocationID, CompanyID: tok.CompanyID}
		}
		account.Name = loc.Name
		account.Email = loc.Email
		account.Phone = loc.Phone
		account.CompanyID = loc.CompanyID
		if loc.Timezone != "" {
			account.Timezone = loc.Timezone
		}
	} else {
		company, err := s.ghl.GetCompany(ctx, tok.AccessToken, tok.CompanyID)
		if err != nil {
			logger.Warn("AuthService:GHLCallback:GetCompany:Error", "error", err, "company_id", tok.CompanyID)
			company = &providerService.GhlCompany{ID: tok.CompanyID}
		}
		account.Name = company.Name
		account.Email = company.Email
		account.Phone = company.Phone
		account.CompanyID = company.ID
		s.signUpCompany(ctx, company)
	}

	if err := s.store.UpsertAccountProfile(ctx, account); err != nil {
		return s.FailureRedirect(""), errors.NewAppError(errors.ErrDatabase, "failed to save account", err)
	}
	return s.successRedirect(account.ID), nil
}

// signUpCompany creates the agency's dashboard user and mails it a temporary
// password. Failures are logged; the install itself still succeeds.
func (s *authService) signUpCompany(ctx context.Context, company *providerService.GhlCompany) {
	if company.Email == "" {
		logger.Warn("AuthService:SignUpCompany:NoEmail", "company_id", company.ID)
		return
	}
	password, err := utils.GenerateTempPassword(constants.TempPasswordLength)
	if err != nil {
		logger.Error("AuthService:SignUpCompany:GeneratePassword:Error", "error", err)
		return
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("AuthService:SignUpCompany:HashPassword:Error", "error", err)
		return
	}

	user := &accountEntity.User{Email: company.Email, Name: company.Name, CompanyID: company.ID, Password: hashed}
	if err := s.store.CreateUser(ctx, user); err != nil {
		logger.Error("AuthService:SignUpCompany:CreateUser:Error", "error", err, "company_id", company.ID)
		return
	}
	if user.ID == uuid.Nil {
		// ON CONFLICT DO NOTHING: the user already exists, keep its password.
		return
	}

	body := fmt.Sprintf("Hi %s,\n\nHere is your temporary password: %s\n\nPlease log in using this password and change it immediately for your security.\nIf you did not request this, please ignore this email or contact support.\n", company.Name, password)
	if err := s.mailer.Send(utils.EmailMessage{
		To:      []string{company.Email},
		Subject: "Welcome - Here is your password",
		Body:    body,
	}); err != nil {
		logger.Error("AuthService:SignUpCompany:SendEmail:Error", "error", err, "company_id", company.ID)
	}
}

func (s *authService) InitiateCalendly(ctx context.Context) (string, *errors.AppError) {
	state, appErr := s.newState(ctx, constants.SourceCalendly)
	if appErr != nil {
		return "", appErr
	}
	return s.calendly.AuthorizeURL(state), nil
}

func (s *authService) CalendlyCallback(ctx context.Context, code, state string) (string, *errors.AppError) {
	if appErr := s.consumeState(ctx, state, constants.SourceCalendly); appErr != nil {
		return s.FailureRedirect(appErr.Message), appErr
	}

	tok, err := s.calendly.ExchangeCode(ctx, code)
	if err != nil {
		return s.FailureRedirect(""), asAppError(err, "failed to exchange token")
	}

	auth := &accountEntity.ProviderAuth{
		Source:               constants.SourceCalendly,
		AccountType:          constants.AccountTypeLocation,
		NativeID:             tok.NativeID(),
		AccessToken:          tok.AccessToken,
		RefreshToken:         tok.RefreshToken,
		ExpiresIn:            tok.ExpiresIn,
		IsActive:             true,
		CalendlyOrganization: tok.Organization,
	}
	if auth.NativeID == "" {
		return s.FailureRedirect(""), errors.NewAppError(errors.ErrProviderRequest, "token grant carried no owner", nil)
	}

	inserted, err := s.store.UpsertAuth(ctx, auth)
	if err != nil {
		return s.FailureRedirect(""), errors.NewAppError(errors.ErrDatabase, "failed to save auth", err)
	}
	logger.Info("AuthService:CalendlyCallback:AuthSaved", "native_id", auth.NativeID, "inserted", inserted)
	if !inserted {
		return s.successRedirect(auth.ID), nil
	}

	if err := s.calendly.CreateWebhookSubscription(ctx, tok, s.webhookURL()); err != nil {
		logger.Warn("AuthService:CalendlyCallback:CreateWebhookSubscription:Error", "error", err, "native_id", auth.NativeID)
	}

	account := &accountEntity.Account{AuthID: &auth.ID, NativeID: auth.NativeID, Timezone: "UTC"}
	user, err := s.calendly.CurrentUser(ctx, tok.AccessToken)
	if err != nil {
		logger.Warn("AuthService:CalendlyCallback:CurrentUser:Error", "error", err, "native_id", auth.NativeID)
	} else {
		account.Name = user.Name
		account.Email = user.Email
		account.CalendlySlug = user.Slug
		account.CalendlySchedulingURL = user.SchedulingURL
		if user.Timezone != "" {
			account.Timezone = user.Timezone
		}
	}

	if err := s.store.UpsertAccountProfile(ctx, account); err != nil {
		return s.FailureRedirect(""), errors.NewAppError(errors.ErrDatabase, "failed to save account", err)
	}
	return s.successRedirect(account.ID), nil
}

// ConnectOnceHub stores an API key against the key's account owner.
func (s *authService) ConnectOnceHub(ctx context.Context, req *dto.OnceHubConnectRequest) (*dto.OnceHubConnectResponse, *errors.AppError) {
	apiKey := strings.TrimSpace(req.APIKey)
	owner, err := s.onceHub.AccountOwner(ctx, apiKey)
	if err != nil {
		return nil, asAppError(err, "failed to find OnceHub account owner")
	}

	auth := &accountEntity.ProviderAuth{
		Source:      constants.SourceOnceHub,
		AccountType: constants.AccountTypeLocation,
		NativeID:    owner.ID,
		AccessToken: apiKey,
		IsActive:    true,
	}
	inserted, err := s.store.UpsertAuth(ctx, auth)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "failed to save auth", err)
	}
	logger.Info("AuthService:ConnectOnceHub:AuthSaved", "native_id", auth.NativeID, "inserted", inserted)

	clientID := auth.ID
	if inserted {
		if err := s.onceHub.CreateWebhook(ctx, apiKey, s.webhookURL()); err != nil {
			logger.Warn("AuthService:ConnectOnceHub:CreateWebhook:Error", "error", err, "native_id", auth.NativeID)
		}
		account := &accountEntity.Account{
			AuthID:   &auth.ID,
			NativeID: owner.ID,
			Name:     owner.Name(),
			Email:    owner.Email,
			Timezone: "UTC",
		}
		if err := s.store.UpsertAccountProfile(ctx, account); err != nil {
			return nil, errors.NewAppError(errors.ErrDatabase, "failed to save account", err)
		}
		clientID = account.ID
	}

	return &dto.OnceHubConnectResponse{Status: "success", RedirectURL: s.successRedirect(clientID)}, nil
}

func (s *authService) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.SigninResponse, *errors.AppError) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Email and password are required", nil)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDatabase, "failed to fetch user", err)
	}
	if user == nil || !utils.ComparePassword(user.Password, req.Password) {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid credentials", nil)
	}

	token, err := utils.GenerateToken(s.opts.JWTSecret, s.opts.JWTTTL, user.ID, user.Email)
	if err != nil {
		logger.Error("AuthService:Signin:GenerateToken:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to issue token", err)
	}
	return &dto.SigninResponse{Token: token, User: *user}, nil
}

func (s *authService) Signout(ctx context.Context, token string) *errors.AppError {
	if err := s.cache.AddToTokenBlacklist(ctx, token); err != nil {
		logger.Error("AuthService:Signout:AddToBlacklist:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to add token to blacklist", err)
	}
	return nil
}

func asAppError(err error, fallback string) *errors.AppError {
	if ae, ok := err.(*errors.AppError); ok && ae != nil {
		return ae
	}
	return errors.NewAppError(errors.ErrProviderRequest, fallback, err)
}
