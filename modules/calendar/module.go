package calendar

import (
	"booking-router/core/config"
	"booking-router/core/database"
	"booking-router/core/middleware"
	accountRepository "booking-router/modules/account/repository"
	"booking-router/modules/calendar/controller"
	"booking-router/modules/calendar/repository"
	"booking-router/modules/calendar/router"
	"booking-router/modules/calendar/service"
	providerService "booking-router/modules/provider/service"

	"github.com/labstack/echo/v4"
)

// Init returns the calendar service; account configuration and the scheduled
// jobs both drive it.
func Init(e *echo.Echo, db database.IDatabase, cfg config.BookingConfig, registry *providerService.Registry, mw *middleware.Middleware) service.CalendarService {
	// Initialize layers
	repo := repository.NewCalendarRepository(db)
	accounts := accountRepository.NewAccountRepository(db)
	calendarService := service.NewCalendarService(repo, accounts, registry, cfg.PrefetchBusinessDays)
	calendarController := controller.NewCalendarController(calendarService)

	// Setup routes
	router.NewCalendarRouter(calendarController).Setup(e, mw)
	return calendarService
}
