package router

import (
	"booking-router/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	Controller *controller.AuthController
}

func NewAuthRouter(ctrl *controller.AuthController) *AuthRouter {
	return &AuthRouter{Controller: ctrl}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw interface{}) {
	oauth := e.Group("/oauth")
	oauth.GET("/initiate", r.Controller.InitiateGHL)
	oauth.GET("/callback", r.Controller.GHLCallback)
	oauth.GET("/calendly/initiate", r.Controller.InitiateCalendly)
	oauth.GET("/calendly/callback", r.Controller.CalendlyCallback)
	oauth.POST("/oncehub", r.Controller.ConnectOnceHub)

	e.POST("/signin", r.Controller.Signin)

	if m, ok := mw.(interface{ AuthMiddleware() echo.MiddlewareFunc }); ok {
		e.POST("/signout", r.Controller.Signout, m.AuthMiddleware())
	}
}
