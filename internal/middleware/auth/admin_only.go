package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bbangting/auth/internal/models"
)

// AdminOnly must run after RequireAccessToken.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := Claims(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
		}
		if claims.Role != string(models.RoleAdmin) {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}
