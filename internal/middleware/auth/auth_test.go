package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbangting/auth/internal/models"
	"github.com/bbangting/auth/internal/tokens"
)

func newTokens(t *testing.T) *tokens.Service {
	t.Helper()
	ts, err := tokens.NewService(tokens.Config{Secret: []byte("mw-secret"), RefreshTTL: time.Hour})
	require.NoError(t, err)
	return ts
}

func newServer(ts *tokens.Service) *echo.Echo {
	e := echo.New()
	g := e.Group("", RequireAccessToken(ts))
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentEmail(c))
	})
	g.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, AdminOnly)
	return e
}

func do(e *echo.Echo, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAccessToken(t *testing.T) {
	t.Parallel()

	ts := newTokens(t)
	e := newServer(ts)
	user := &models.User{Email: "a@x.com", Role: models.RoleUser}

	access, _, err := ts.IssueAccessToken(user)
	require.NoError(t, err)
	refresh, err := ts.IssueRefreshToken(user)
	require.NoError(t, err)

	rec := do(e, "/me", "Bearer "+access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", rec.Body.String())

	rec = do(e, "/me", "BEARER "+access)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "Bearer "+refresh).Code, "refresh tokens are not access tokens")
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()

	ts := newTokens(t)
	e := newServer(ts)

	userAccess, _, err := ts.IssueAccessToken(&models.User{Email: "a@x.com", Role: models.RoleUser})
	require.NoError(t, err)
	adminAccess, _, err := ts.IssueAccessToken(&models.User{Email: "root@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(e, "/admin", "Bearer "+userAccess).Code)
	assert.Equal(t, http.StatusOK, do(e, "/admin", "Bearer "+adminAccess).Code)
}
