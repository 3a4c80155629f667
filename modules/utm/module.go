package utm

import (
	"booking-router/core/cache"
	"booking-router/core/database"
	"booking-router/core/middleware"
	"booking-router/modules/utm/controller"
	"booking-router/modules/utm/repository"
	"booking-router/modules/utm/router"
	"booking-router/modules/utm/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, mw *middleware.Middleware) service.UTMService {
	repo := repository.NewUTMRepository(db)
	svc := service.NewUTMService(repo, c)
	ctrl := controller.NewUTMController(svc)
	router.NewUTMRouter(ctrl).Setup(e, mw)
	return svc
}
