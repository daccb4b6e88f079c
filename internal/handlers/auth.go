package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bbangting/auth/internal/logging"
	"github.com/bbangting/auth/internal/models"
	"github.com/bbangting/auth/internal/service"
)

type AuthHandler struct {
	Svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

func (h *AuthHandler) Join(c echo.Context) error {
	var req JoinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.Svc.Join(c.Request().Context(), service.JoinInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Nickname: req.Nickname,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// Login hands the token pair out in response headers, the body only carries
// who logged in.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderAuthorization, string(models.TokenTypeBearer)+" "+res.AccessToken)
	header.Set(HeaderRefreshToken, res.RefreshToken)
	header.Set(HeaderAccessExpiresAt, res.AccessExp.UTC().Format(time.RFC3339))

	return c.JSON(http.StatusOK, LoginResponse{UserID: res.UserID, Username: res.Username})
}

// Refresh answers 200 with an empty body when the presented token is skipped.
func (h *AuthHandler) Refresh(c echo.Context) error {
	pair, err := h.Svc.Refresh(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return httpError(err)
	}
	if pair == nil {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_logout")

	token := c.Request().Header.Get(HeaderRefreshToken)
	if token == "" {
		l.Warn("logout_without_token", "status", 200)
	}
	if err := h.Svc.Logout(c.Request().Context(), token); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
