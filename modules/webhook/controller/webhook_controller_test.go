package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"booking-router/core/errors"
	"booking-router/modules/webhook/dto"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubWebhookService struct {
	message string
	appErr  *errors.AppError
	got     *dto.WebhookPayload
}

func (s *stubWebhookService) Handle(_ context.Context, payload *dto.WebhookPayload) (string, *errors.AppError) {
	s.got = payload
	return s.message, s.appErr
}

func post(t *testing.T, svc *stubWebhookService, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = NewWebhookController(svc).Handle(e.NewContext(req, rec))
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &stubWebhookService{message: "Data saved successfully"}

	rec := post(t, svc, `{"event":"invitee.created"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Data saved successfully"}`, rec.Body.String())
	assert.Equal(t, "invitee.created", svc.got.Kind())
}

func TestHandle_Rejected(t *testing.T) {
	svc := &stubWebhookService{appErr: errors.NewAppError(errors.ErrInvalidInput, "Unhandled webhook type.", nil)}

	rec := post(t, svc, `{"type":"Nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Unhandled webhook type."}`, rec.Body.String())
}

func TestHandle_StoreFailureIs500(t *testing.T) {
	svc := &stubWebhookService{appErr: errors.NewAppError(errors.ErrDatabase, "Internal Server Error", nil)}

	rec := post(t, svc, `{"type":"AppointmentCreate"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
