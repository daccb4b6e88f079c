package service

import (
	"errors"

	"github.com/bbangting/auth/internal/repo"
	"github.com/bbangting/auth/internal/security"
	"github.com/bbangting/auth/internal/tokens"
)

var (
	ErrDuplicateEmail       = repo.ErrDuplicateEmail
	ErrUserNotFound         = repo.ErrUserNotFound
	ErrAuthenticationFailed = security.ErrAuthenticationFailed
	ErrTokenMalformed       = tokens.ErrTokenMalformed
	ErrTokenExpired         = tokens.ErrTokenExpired

	ErrRefreshRejected = errors.New("refresh rejected")
	ErrValidation      = errors.New("validation failed")
)
