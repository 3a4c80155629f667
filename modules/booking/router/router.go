package router

import (
	"booking-router/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	Controller *controller.BookingController
}

func NewBookingRouter(ctrl *controller.BookingController) *BookingRouter {
	return &BookingRouter{Controller: ctrl}
}

func (r *BookingRouter) Setup(e *echo.Echo, mw interface{}) {
	e.POST("/fetchSlots", r.Controller.FetchSlots)
	e.POST("/booking", r.Controller.Book)
}
