package dto

type UTMRequest struct {
	UTMParameter string `json:"utm_parameter" validate:"required,max=255"`
}
