package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-router/core/cache"
	"booking-router/core/config"
	"booking-router/core/database"
	"booking-router/core/logger"
	"booking-router/core/metrics"
	"booking-router/core/middleware"
	"booking-router/core/queue"
	"booking-router/core/validator"
	"booking-router/modules/account"
	accountRepository "booking-router/modules/account/repository"
	"booking-router/modules/auth"
	"booking-router/modules/booking"
	"booking-router/modules/calendar"
	"booking-router/modules/jobs"
	providerService "booking-router/modules/provider/service"
	"booking-router/modules/reference"
	"booking-router/modules/style"
	"booking-router/modules/utm"
	"booking-router/modules/webhook"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the HTTP API and the job workers and blocks until SIGINT/SIGTERM.
func Run() error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()
	logger.Init(cfg.App.LogLevel, cfg.App.Env)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			logger.Error("Server:Run:Migrate:Error", "error", err)
			return err
		}
	}

	c := newCache(cfg.Redis)
	registry := providerService.NewProviderRegistry(cfg, accountRepository.NewAccountRepository(db), c)
	mw := middleware.NewMiddleware(cfg.JWT.Secret, c)

	e := newEcho()
	references := reference.Init(e, db, c)
	utms := utm.Init(e, db, c, mw)
	style.Init(e, db, mw)
	calendars := calendar.Init(e, db, cfg.Booking, registry, mw)
	account.Init(e, db, calendars, registry, mw)
	booking.Init(e, db, cfg.Booking, registry, references, utms)
	auth.Init(e, db, c, cfg, registry, mw)
	webhook.Init(e, db, registry)

	if cfg.Jobs.Enabled {
		q := queue.New(cfg.Redis, cfg.Jobs)
		if err := jobs.Init(q, calendars, cfg.Jobs); err != nil {
			return err
		}
		if err := q.Start(); err != nil {
			logger.Error("Server:Run:Queue:Error", "error", err)
		} else {
			defer q.Shutdown()
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "port", cfg.Server.Port)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server:Run:Serve:Error", "error", err)
			return err
		}
	case <-ctx.Done():
		logger.Info("Server:Run:ShuttingDown")
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())
	e.Use(middleware.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	return e
}

// newCache prefers Redis and falls back to an in-process cache so a single
// node can run without it.
func newCache(cfg config.RedisConfig) cache.Cache {
	rc, err := cache.NewRedisCache(cache.RedisConfig{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err != nil {
		logger.Warn("Server:NewCache:RedisUnavailable", "error", err, "fallback", "memory")
		return cache.NewMemoryCache()
	}
	return rc
}
