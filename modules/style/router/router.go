package router

import (
	"booking-router/modules/style/controller"

	"github.com/labstack/echo/v4"
)

type StyleRouter struct {
	Controller *controller.StyleController
}

func NewStyleRouter(ctrl *controller.StyleController) *StyleRouter {
	return &StyleRouter{Controller: ctrl}
}

func (r *StyleRouter) Setup(e *echo.Echo, mw interface{}) {
	e.GET("/style", r.Controller.List)
	if m, ok := mw.(interface {
		AuthMiddleware() echo.MiddlewareFunc
	}); ok {
		e.POST("/style", r.Controller.Save, m.AuthMiddleware())
		return
	}
	e.POST("/style", r.Controller.Save)
}
