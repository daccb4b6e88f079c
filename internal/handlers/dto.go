package handlers

import (
	"github.com/bbangting/auth/internal/models"
	"github.com/bbangting/auth/internal/notify"
)

const (
	HeaderRefreshToken    = "RefreshToken"
	HeaderAccessExpiresAt = "Access-Token-Expire-Time"
)

type JoinRequest struct {
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,max=72"`
	Username string `json:"username" validate:"required,max=100"`
	Nickname string `json:"nickname" validate:"required,max=10"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PasswordUpdateRequest struct {
	CurrentPassword    string `json:"currentPassword"    validate:"required"`
	NewPassword        string `json:"newPassword"        validate:"required,max=72"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required,eqfield=NewPassword"`
}

type NicknameUpdateRequest struct {
	Nickname string `json:"nickname" validate:"required,max=10"`
}

type LoginResponse struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

type UserResponse struct {
	ID       uint               `json:"id"`
	Email    string             `json:"email"`
	Username string             `json:"username"`
	Nickname string             `json:"nickname"`
	Role     models.Role        `json:"role"`
	Type     models.AccountType `json:"type"`
	Banned   bool               `json:"banned"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Nickname: u.Nickname,
		Role:     u.Role,
		Type:     u.Type,
		Banned:   u.IsBanned(),
	}
}

type LoginHistoryResponse struct {
	Total  int64               `json:"total"`
	Events []notify.LoginEvent `json:"events"`
}
