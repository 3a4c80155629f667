package router

import (
	"booking-router/modules/reference/controller"

	"github.com/labstack/echo/v4"
)

type ReferenceRouter struct {
	Controller *controller.ReferenceController
}

func NewReferenceRouter(ctrl *controller.ReferenceController) *ReferenceRouter {
	return &ReferenceRouter{Controller: ctrl}
}

func (r *ReferenceRouter) Setup(e *echo.Echo, mw interface{}) {
	e.GET("/states", r.Controller.ListStates)
	e.GET("/timezone", r.Controller.ListTimezones)
}
