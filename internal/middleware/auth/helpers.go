package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/bbangting/auth/internal/tokens"
)

const ClaimsKey = "claims"

func Claims(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*tokens.Claims)
	return claims, ok && claims != nil
}

// CurrentEmail is the subject of the verified access token, "" if none.
func CurrentEmail(c echo.Context) string {
	if claims, ok := Claims(c); ok {
		return claims.Subject
	}
	return ""
}
