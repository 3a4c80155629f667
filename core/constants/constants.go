package constants

import "time"

const (
	DefaultTimeout = 30 * time.Second

	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes

	OAuthStateTTL     = 10 * time.Minute
	UTMNameCacheTTL   = 10 * time.Minute
	StatesCacheTTL    = time.Hour
	TokenBlacklistTTL = 24 * time.Hour

	TempPasswordLength = 12
)

// Provider identities stored on provider auth rows.
const (
	SourceGHL      = "ghl"
	SourceCalendly = "calendly"
	SourceOnceHub  = "oncehub"
)

// GHL auth rows are either a sub-account (location) or an agency (company).
const (
	AccountTypeLocation = "location"
	AccountTypeCompany  = "company"
)

const (
	ConditionAND = "AND"
	ConditionOR  = "OR"

	StateAll = "ALL"
)

const (
	CachePrefixOAuthState = "oauth:state:"
	CachePrefixUTMName    = "utm:name:"
	CacheKeyStates        = "reference:states"
	CachePrefixRefresh    = "token:refresh:"
	CachePrefixBlacklist  = "token:blacklist:"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
)
