package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-router/core/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrValidationFailed, http.StatusBadRequest},
		{errors.ErrBusinessRule, http.StatusBadRequest},
		{errors.ErrNotFound, http.StatusNotFound},
		{errors.ErrProviderRequest, http.StatusInternalServerError},
		{errors.ErrDatabase, http.StatusInternalServerError},
		{errors.ErrUnauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.code))
		})
	}
}

func TestErrorResponse_AttachesProviderDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	appErr := errors.NewAppError(errors.ErrProviderRequest, "GHL API error: 422", nil).
		WithDetails(map[string]any{"message": "slot unavailable"})

	require.NoError(t, NewBaseController().ErrorResponse(c, appErr))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "PROVIDER_REQUEST_FAILED", body["code"])
	assert.Equal(t, "slot unavailable", body["details"].(map[string]any)["message"])
}

func TestErrorResponse_PlainError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, NewBaseController().ErrorResponse(c, fmt.Errorf("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}
