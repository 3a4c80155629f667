package entity

import (
	"strconv"
	"strings"

	"booking-router/core/constants"
	coreEntity "booking-router/core/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Account is one tenant's targeting and booking configuration. NativeID is
// the provider-side id (GHL location, Calendly owner, OnceHub account owner).
type Account struct {
	coreEntity.BaseEntity
	AuthID                *uuid.UUID     `db:"auth_id" json:"auth_id"`
	NativeID              string         `db:"native_id" json:"native_id"`
	CompanyID             string         `db:"company_id" json:"company_id"`
	Name                  string         `db:"name" json:"name"`
	Email                 string         `db:"email" json:"email"`
	Phone                 string         `db:"phone" json:"phone"`
	Timezone              string         `db:"timezone" json:"timezone"`
	CalendarID            string         `db:"calendar_id" json:"calendar_id"`
	MirrorCalendarID      *uuid.UUID     `db:"mirror_calendar_id" json:"mirror_calendar_id"`
	SpendAmount           string         `db:"spend_amount" json:"spend_amount"`
	PriorityScore         string         `db:"priority_score" json:"priority_score"`
	States                pq.StringArray `db:"states" json:"states"`
	AssetMinimum          string         `db:"asset_minimum" json:"asset_minimum"`
	Condition             string         `db:"condition" json:"condition"`
	RedirectURL           string         `db:"redirect_url" json:"redirect_url"`
	CustomFieldID         string         `db:"custom_field_id" json:"custom_field_id"`
	CalendlySlug          string         `db:"calendly_slug" json:"calendly_slug"`
	CalendlySchedulingURL string         `db:"calendly_scheduling_url" json:"calendly_scheduling_url"`
}

// Spend parses the stored spend amount; anything non-numeric counts as 0.
func (a *Account) Spend() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(a.SpendAmount), 64)
	if err != nil {
		return 0
	}
	return v
}

func (a *Account) Priority() int {
	v, err := strconv.Atoi(strings.TrimSpace(a.PriorityScore))
	if err != nil {
		return 0
	}
	return v
}

// MatchCondition normalises the AND/OR combinator; AND is the default.
func (a *Account) MatchCondition() string {
	if strings.EqualFold(strings.TrimSpace(a.Condition), constants.ConditionOR) {
		return constants.ConditionOR
	}
	return constants.ConditionAND
}

func (a *Account) Location() string {
	if a.Timezone == "" {
		return "UTC"
	}
	return a.Timezone
}

// ProviderAuth holds one provider connection's credentials.
type ProviderAuth struct {
	coreEntity.BaseEntity
	Source               string `db:"source" json:"source"`
	AccountType          string `db:"account_type" json:"account_type"`
	NativeID             string `db:"native_id" json:"native_id"`
	CompanyID            string `db:"company_id" json:"company_id"`
	AccessToken          string `db:"access_token" json:"-"`
	RefreshToken         string `db:"refresh_token" json:"-"`
	ExpiresIn            int64  `db:"expires_in" json:"expires_in"`
	IsActive             bool   `db:"is_active" json:"is_active"`
	CalendlyOrganization string `db:"calendly_organization" json:"calendly_organization"`
}

// AccountWithAuth is an account joined with its provider connection.
type AccountWithAuth struct {
	Account
	Auth *ProviderAuth `json:"auth"`
}

func (a *AccountWithAuth) Source() string {
	if a.Auth == nil {
		return ""
	}
	return a.Auth.Source
}

type User struct {
	coreEntity.BaseEntity
	Email     string `db:"email" json:"email"`
	Name      string `db:"name" json:"name"`
	CompanyID string `db:"company_id" json:"company_id"`
	Password  string `db:"password" json:"-"`
}
