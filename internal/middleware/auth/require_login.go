package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/bbangting/auth/internal/logging"
	"github.com/bbangting/auth/internal/tokens"
)

// RequireAccessToken accepts only access tokens signed by ts. The parsed
// claims are stored under ClaimsKey.
func RequireAccessToken(ts *tokens.Service) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return ts.ParseAccessToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).
				Warn("access_denied", "status", 401, "reason", "invalid or missing access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
		},
	})
}
