package validator

import (
	"net/http"

	"booking-router/core/controller"
	"booking-router/core/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonTagName)
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i any) error {
	if err := rv.validate.Struct(i); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return controller.NewErrorResponse(http.StatusBadRequest, errors.ErrValidationFailed, err.Error())
		}
		details := make([]controller.ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, controller.NewValidationError(fe.Field(), describe(fe)))
		}
		return controller.NewErrorResponse(http.StatusBadRequest, errors.ErrValidationFailed, "Invalid input", details)
	}
	return nil
}

var _ echo.Validator = (*RequestValidator)(nil)
