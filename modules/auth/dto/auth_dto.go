package dto

import accountEntity "booking-router/modules/account/entity"

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse flattens the user next to the token.
type SigninResponse struct {
	Token string `json:"token"`
	accountEntity.User
}

type OnceHubConnectRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
}

type OnceHubConnectResponse struct {
	Status      string `json:"status"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}
