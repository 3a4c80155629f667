package account

import (
	"booking-router/core/database"
	"booking-router/core/middleware"
	"booking-router/modules/account/controller"
	"booking-router/modules/account/repository"
	"booking-router/modules/account/router"
	"booking-router/modules/account/service"
	calService "booking-router/modules/calendar/service"
	providerService "booking-router/modules/provider/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, calendars calService.CalendarService, registry *providerService.Registry, mw *middleware.Middleware) {
	repo := repository.NewAccountRepository(db)
	svc := service.NewAccountService(repo, calendars, registry)
	ctrl := controller.NewAccountController(svc)
	router.NewAccountRouter(ctrl).Setup(e, mw)
}
