package controller

import (
	"net/http"

	"booking-router/core/controller"
	"booking-router/core/logger"
	"booking-router/modules/webhook/dto"
	"booking-router/modules/webhook/service"

	"github.com/labstack/echo/v4"
)

type WebhookController struct {
	controller.BaseController
	WebhookService service.WebhookService
}

func NewWebhookController(webhookSvc service.WebhookService) *WebhookController {
	return &WebhookController{
		BaseController: controller.NewBaseController(),
		WebhookService: webhookSvc,
	}
}

// Handle answers providers with a bare {message} body; they only look at the
// status code.
func (w *WebhookController) Handle(c echo.Context) error {
	payload := new(dto.WebhookPayload)
	if err := c.Bind(payload); err != nil {
		return c.JSON(http.StatusBadRequest, dto.WebhookResponse{Message: "Invalid webhook payload."})
	}

	message, appErr := w.WebhookService.Handle(c.Request().Context(), payload)
	if appErr != nil {
		logger.Warn("WebhookController:Handle:Rejected", "kind", payload.Kind(), "code", appErr.Code, "message", appErr.Message, "error", appErr.Err)
		return c.JSON(controller.StatusFor(appErr.Code), dto.WebhookResponse{Message: appErr.Message})
	}
	return c.JSON(http.StatusOK, dto.WebhookResponse{Message: message})
}
