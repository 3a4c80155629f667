package style

import (
	"booking-router/core/database"
	"booking-router/core/middleware"
	"booking-router/modules/style/controller"
	"booking-router/modules/style/repository"
	"booking-router/modules/style/router"
	"booking-router/modules/style/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) {
	repo := repository.NewStyleRepository(db)
	svc := service.NewStyleService(repo)
	ctrl := controller.NewStyleController(svc)
	router.NewStyleRouter(ctrl).Setup(e, mw)
}
