package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bbangting/auth/internal/logging"
	"github.com/bbangting/auth/internal/middleware/auth"
	"github.com/bbangting/auth/internal/notify"
	"github.com/bbangting/auth/internal/service"
)

type LoginHistory interface {
	RecentLogins(ctx context.Context, email string, page, size int) (int64, []notify.LoginEvent, error)
}

// UserHandler serves the authenticated account endpoints. History may be nil
// when no audit index is configured.
type UserHandler struct {
	Svc     *service.AuthService
	History LoginHistory
}

func NewUserHandler(svc *service.AuthService, history LoginHistory) *UserHandler {
	return &UserHandler{Svc: svc, History: history}
}

func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.Svc.Me(c.Request().Context(), auth.CurrentEmail(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) UpdatePassword(c echo.Context) error {
	var req PasswordUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.Svc.UpdatePassword(c.Request().Context(), auth.CurrentEmail(c),
		req.CurrentPassword, req.NewPassword, req.NewPasswordConfirm)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *UserHandler) UpdateNickname(c echo.Context) error {
	var req NicknameUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.Svc.UpdateNickname(c.Request().Context(), auth.CurrentEmail(c), req.Nickname)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) MyLogins(c echo.Context) error {
	return h.logins(c, auth.CurrentEmail(c))
}

// UserLogins is the admin view of another account's login history.
func (h *UserHandler) UserLogins(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}
	return h.logins(c, email)
}

func (h *UserHandler) logins(c echo.Context, email string) error {
	if h.History == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "login history unavailable")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	total, events, err := h.History.RecentLogins(c.Request().Context(), email, page, size)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("login_history_failed", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "login history unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, LoginHistoryResponse{Total: total, Events: events})
}
