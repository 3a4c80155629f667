package booking

import (
	"booking-router/core/config"
	"booking-router/core/database"
	accountRepository "booking-router/modules/account/repository"
	"booking-router/modules/booking/controller"
	"booking-router/modules/booking/router"
	bookingService "booking-router/modules/booking/service"
	calRepository "booking-router/modules/calendar/repository"
	providerService "booking-router/modules/provider/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, cfg config.BookingConfig, registry *providerService.Registry, states bookingService.StateResolver, utmNames bookingService.UTMNameResolver) {
	calRepo := calRepository.NewCalendarRepository(db)
	accountRepo := accountRepository.NewAccountRepository(db)

	bookingSvc := bookingService.NewBookingService(calRepo, accountRepo, states, utmNames, registry, bookingService.Options{
		EnablePriorityScore: cfg.EnablePriorityScore,
		Strategy:            bookingService.NewStrategy(cfg.SelectionStrategy, nil),
	})

	ctrl := controller.NewBookingController(bookingSvc)
	router.NewBookingRouter(ctrl).Setup(e, nil)
}
