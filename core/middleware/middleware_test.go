package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-router/core/cache"
	"booking-router/core/constants"
	"booking-router/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAuth(t *testing.T, mw *Middleware, header string) (int, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/account/loc-1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw.AuthMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(c)
	if err != nil {
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		return httpErr.Code, c
	}
	return rec.Code, c
}

func TestAuthMiddleware(t *testing.T) {
	mem := cache.NewMemoryCache()
	mw := NewMiddleware("secret", mem)
	userID := uuid.New()

	token, err := utils.GenerateToken("secret", time.Hour, userID, "owner@example.com")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		code, _ := runAuth(t, mw, "")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("valid token", func(t *testing.T) {
		code, c := runAuth(t, mw, "Bearer "+token)
		assert.Equal(t, http.StatusNoContent, code)
		assert.Equal(t, userID, c.Get(constants.ContextKeyUserID))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := utils.GenerateToken("other", time.Hour, userID, "owner@example.com")
		require.NoError(t, err)
		code, _ := runAuth(t, mw, "Bearer "+other)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, mem.AddToTokenBlacklist(context.Background(), token))
		code, _ := runAuth(t, mw, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}
