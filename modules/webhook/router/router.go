package router

import (
	"booking-router/modules/webhook/controller"

	"github.com/labstack/echo/v4"
)

type WebhookRouter struct {
	Controller *controller.WebhookController
}

func NewWebhookRouter(ctrl *controller.WebhookController) *WebhookRouter {
	return &WebhookRouter{Controller: ctrl}
}

func (r *WebhookRouter) Setup(e *echo.Echo, mw interface{}) {
	e.POST("/webhook", r.Controller.Handle)
}
