package middleware

import (
	"strconv"
	"time"

	"booking-router/core/cache"
	"booking-router/core/constants"
	"booking-router/core/controller"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/metrics"
	"booking-router/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtSecret string
	cache     cache.Cache
	controller.BaseController
}

func NewMiddleware(jwtSecret string, cache cache.Cache) *Middleware {
	return &Middleware{
		jwtSecret:      jwtSecret,
		cache:          cache,
		BaseController: controller.NewBaseController(),
	}
}

// AuthMiddleware requires a valid, non-revoked sign-in token.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c.Request().Header.Get("Authorization"))
			if err != nil {
				return m.Unauthorized(errors.ErrMissingAuthorizationHeader, err.Error())
			}

			blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
			if err != nil {
				logger.Error("Middleware:AuthMiddleware:IsTokenBlacklisted:Error", "error", err)
				return m.InternalServerError(errors.ErrInternalServer, "failed to check token")
			}
			if blacklisted {
				return m.Unauthorized(errors.ErrUnauthorized, "token has been revoked")
			}

			claims, err := utils.ValidateAndParseToken(m.jwtSecret, token)
			if err != nil {
				return m.Unauthorized(errors.ErrTokenExpired, "invalid or expired token")
			}

			c.Set(constants.ContextKeyUserID, claims.UserID)
			c.Set(constants.ContextKeyEmail, claims.Email)
			return next(c)
		}
	}
}

// RequestLogger logs one line per request and feeds the HTTP request counter.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			route := c.Path()
			metrics.RecordHTTPRequest(c.Request().Method, route, strconv.Itoa(status))
			logger.Info("HTTP:Request",
				"method", c.Request().Method,
				"route", route,
				"uri", c.Request().RequestURI,
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
