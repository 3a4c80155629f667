package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"booking-router/core/errors"
	"booking-router/core/validator"
	"booking-router/modules/account/dto"
	"booking-router/modules/account/entity"
	"booking-router/modules/account/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	service.AccountService
	configured []*dto.ConfigureAccountRequest
}

func (s *stubService) GetLocation(_ context.Context, id string) (*entity.AccountWithAuth, *errors.AppError) {
	if id != "loc-1" {
		return nil, errors.NewAppError(errors.ErrNotFound, "Subaccount not found", nil)
	}
	return &entity.AccountWithAuth{Account: entity.Account{NativeID: id}}, nil
}

func (s *stubService) ConfigureAccount(_ context.Context, req *dto.ConfigureAccountRequest) (*dto.ConfigureAccountResponse, *errors.AppError) {
	s.configured = append(s.configured, req)
	return &dto.ConfigureAccountResponse{}, nil
}

func newEcho(svc service.AccountService) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	ctrl := NewAccountController(svc)
	e.GET("/getLocation", ctrl.GetLocation)
	e.PUT("/configureAccount", ctrl.ConfigureAccount)
	return e
}

func TestGetLocation_NotFound(t *testing.T) {
	e := newEcho(&stubService{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/getLocation?id=missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Subaccount not found", body["message"])
}

func TestConfigureAccount_Validation(t *testing.T) {
	svc := &stubService{}
	e := newEcho(svc)

	body := `{"native_id":"loc-1","calendar_id":"cal-1","redirect_url":"not a url"}`
	req := httptest.NewRequest(http.MethodPut, "/configureAccount", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.configured)
}

func TestConfigureAccount_OK(t *testing.T) {
	svc := &stubService{}
	e := newEcho(svc)

	body := `{"native_id":"loc-1","spend_amount":"100","calendar_id":"cal-1","condition":"OR","states":["s1"],"redirect_url":"https://example.com/done"}`
	req := httptest.NewRequest(http.MethodPut, "/configureAccount", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.configured, 1)
	assert.Equal(t, []string{"s1"}, svc.configured[0].States)
}
