package router

import (
	"booking-router/core/middleware"
	"booking-router/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	// Private routes (require authentication)
	calendarRoutes := e.Group("/calendars")
	calendarRoutes.Use(mw.AuthMiddleware())

	calendarRoutes.POST("/refresh", r.controller.Refresh)
	calendarRoutes.POST("/prefetch", r.controller.Prefetch)
	calendarRoutes.POST("/cleanup", r.controller.Cleanup)
}
