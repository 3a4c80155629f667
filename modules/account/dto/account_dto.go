package dto

type AuthSource struct {
	Source string `json:"source" validate:"omitempty,oneof=ghl calendly oncehub"`
}

// ConfigureAccountRequest edits an account's targeting. Omitted optional
// fields keep their stored values.
type ConfigureAccountRequest struct {
	NativeID     string      `json:"native_id" validate:"required"`
	SpendAmount  string      `json:"spend_amount"`
	CalendarID   string      `json:"calendar_id" validate:"required"`
	Phone        *string     `json:"phone,omitempty"`
	States       []string    `json:"states,omitempty"`
	AssetMinimum *string     `json:"asset_minimum,omitempty"`
	Condition    *string     `json:"condition,omitempty" validate:"omitempty,oneof=AND OR and or"`
	Name         *string     `json:"name,omitempty"`
	Email        *string     `json:"email,omitempty" validate:"omitempty,email"`
	RedirectURL  string      `json:"redirect_url" validate:"required,url"`
	Auth         *AuthSource `json:"auth,omitempty"`
}

type ConfigureAccountResponse struct {
	Account  any `json:"userData"`
	Calendar any `json:"calendarData"`
}
