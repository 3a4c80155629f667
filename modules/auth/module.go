package auth

import (
	"booking-router/core/cache"
	"booking-router/core/config"
	"booking-router/core/database"
	"booking-router/core/middleware"
	"booking-router/core/utils"
	accountRepository "booking-router/modules/account/repository"
	"booking-router/modules/auth/controller"
	"booking-router/modules/auth/router"
	"booking-router/modules/auth/service"
	providerService "booking-router/modules/provider/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, cfg *config.Config, registry *providerService.Registry, mw *middleware.Middleware) {
	repo := accountRepository.NewAccountRepository(db)
	mailer := utils.SMTPMailer{Config: utils.EmailConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}}

	authService := service.NewAuthService(repo, c, registry.GHL, registry.Calendly, registry.OnceHub, mailer, service.Options{
		JWTSecret:   cfg.JWT.Secret,
		JWTTTL:      cfg.JWT.TTL,
		RedirectURL: cfg.App.RedirectURL,
		AppURL:      cfg.App.URL,
	})
	ctrl := controller.NewAuthController(authService)
	router.NewAuthRouter(ctrl).Setup(e, mw)
}
