package webhook

import (
	"booking-router/core/database"
	accountRepository "booking-router/modules/account/repository"
	calRepository "booking-router/modules/calendar/repository"
	providerService "booking-router/modules/provider/service"
	"booking-router/modules/webhook/controller"
	"booking-router/modules/webhook/router"
	"booking-router/modules/webhook/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, registry *providerService.Registry) {
	accounts := accountRepository.NewAccountRepository(db)
	slots := calRepository.NewCalendarRepository(db)

	svc := service.NewWebhookService(accounts, slots, registry.GHL, registry.Tokens)
	ctrl := controller.NewWebhookController(svc)
	router.NewWebhookRouter(ctrl).Setup(e, nil)
}
