package errors

import "fmt"

type ErrorCode string

const (
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrValidationFailed           ErrorCode = "VALIDATION_FAILED"
	ErrBusinessRule               ErrorCode = "BUSINESS_RULE_FAILED"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrProviderRequest            ErrorCode = "PROVIDER_REQUEST_FAILED"
	ErrProviderUnsupported        ErrorCode = "PROVIDER_UNSUPPORTED"
	ErrDatabase                   ErrorCode = "DATABASE_ERROR"
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
)

// AppError carries an error code understood by the HTTP layer. Details is
// forwarded to the client as-is (provider error bodies, field errors).
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode reports whether err is an *AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	ae, ok := err.(*AppError)
	return ok && ae != nil && ae.Code == code
}
