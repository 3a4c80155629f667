package router

import (
	"booking-router/modules/account/controller"

	"github.com/labstack/echo/v4"
)

type AccountRouter struct {
	Controller *controller.AccountController
}

func NewAccountRouter(ctrl *controller.AccountController) *AccountRouter {
	return &AccountRouter{Controller: ctrl}
}

func (r *AccountRouter) Setup(e *echo.Echo, mw interface{}) {
	e.GET("/getLocation", r.Controller.GetLocation)
	e.GET("/getListOfAllAccounts", r.Controller.ListAccounts)
	e.PUT("/configureAccount", r.Controller.ConfigureAccount)
	e.GET("/getCalendars", r.Controller.ListCalendlyEventTypes)
	e.GET("/getOncehubCalendars", r.Controller.ListOnceHubCalendars)

	if m, ok := mw.(interface {
		AuthMiddleware() echo.MiddlewareFunc
	}); ok {
		e.DELETE("/account/:id", r.Controller.DeleteAccount, m.AuthMiddleware())
		return
	}
	e.DELETE("/account/:id", r.Controller.DeleteAccount)
}
