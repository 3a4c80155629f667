package router

import (
	"booking-router/modules/utm/controller"

	"github.com/labstack/echo/v4"
)

type UTMRouter struct {
	Controller *controller.UTMController
}

func NewUTMRouter(ctrl *controller.UTMController) *UTMRouter {
	return &UTMRouter{Controller: ctrl}
}

func (r *UTMRouter) Setup(e *echo.Echo, mw interface{}) {
	e.GET("/utm", r.Controller.List)
	e.GET("/utm/:id", r.Controller.Get)

	writes := e.Group("/utm")
	if m, ok := mw.(interface {
		AuthMiddleware() echo.MiddlewareFunc
	}); ok {
		writes.Use(m.AuthMiddleware())
	}
	writes.POST("", r.Controller.Create)
	writes.PUT("/:id", r.Controller.Update)
	writes.DELETE("/:id", r.Controller.Delete)
}
