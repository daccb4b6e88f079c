package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bbangting/auth/internal/handlers"
	"github.com/bbangting/auth/internal/middleware/auth"
	"github.com/bbangting/auth/internal/tokens"
)

type Deps struct {
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
	Tokens      *tokens.Service

	// Ready backs /health/ready. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = handlers.NewRequestValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/join", d.AuthHandler.Join)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/refresh", d.AuthHandler.Refresh)
	authGroup.POST("/logout", d.AuthHandler.Logout)

	requireLogin := auth.RequireAccessToken(d.Tokens)

	users := v1.Group("/users", requireLogin)
	users.GET("/me", d.UserHandler.Me)
	users.PUT("/me/password", d.UserHandler.UpdatePassword)
	users.PATCH("/me/nickname", d.UserHandler.UpdateNickname)
	users.GET("/me/logins", d.UserHandler.MyLogins)

	admin := v1.Group("/admin", requireLogin, auth.AdminOnly)
	admin.GET("/users/:email/logins", d.UserHandler.UserLogins)
}
