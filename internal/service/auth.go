package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bbangting/auth/internal/hash"
	"github.com/bbangting/auth/internal/logging"
	"github.com/bbangting/auth/internal/models"
	"github.com/bbangting/auth/internal/notify"
	"github.com/bbangting/auth/internal/repo"
	"github.com/bbangting/auth/internal/security"
	"github.com/bbangting/auth/internal/tokens"
)

const maxNicknameLength = 10

type LoginState int

const (
	StateStart LoginState = iota
	StateCredentialsVerified
	StateOldTokensRevoked
	StateNewTokenSaved
	StateDone
)

func (s LoginState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateCredentialsVerified:
		return "credentials_verified"
	case StateOldTokensRevoked:
		return "old_tokens_revoked"
	case StateNewTokenSaved:
		return "new_token_saved"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("login_state(%d)", int(s))
	}
}

type LoginResult struct {
	UserID       uint
	Username     string
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	State        LoginState
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type JoinInput struct {
	Email    string
	Password string
	Username string
	Nickname string
}

type AuthService struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Service
	Hasher   hash.Encoder
	Notifier notify.Notifier

	// StrictRefresh turns every silent refresh skip into ErrRefreshRejected.
	StrictRefresh bool

	authOnce sync.Once
	auth     *security.Authenticator
}

func (s *AuthService) authenticator() *security.Authenticator {
	s.authOnce.Do(func() {
		s.auth = &security.Authenticator{Users: s.Repo, Hasher: s.Hasher}
	})
	return s.auth
}

func (s *AuthService) notifier() notify.Notifier {
	if s.Notifier == nil {
		return notify.Nop{}
	}
	return s.Notifier
}

func (s *AuthService) Join(ctx context.Context, in JoinInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.join")

	if err := checkPasswordLength(in.Password); err != nil {
		l.Warn("join_failed", "status", 400, "reason", "password too long")
		return nil, err
	}

	if _, err := s.Repo.FindByEmail(ctx, in.Email); err == nil {
		l.Warn("join_failed", "status", 409, "reason", "email already registered")
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		l.Error("join_failed", "status", 500, "error", err)
		return nil, err
	}

	pwHash, err := s.Hasher.Encode(in.Password)
	if err != nil {
		l.Error("join_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: pwHash,
		Username:     in.Username,
		Nickname:     in.Nickname,
		Role:         models.RoleUser,
		Type:         models.AccountGeneral,
	}
	saved, err := s.Repo.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			l.Warn("join_failed", "status", 409, "reason", "email already registered")
			return nil, ErrDuplicateEmail
		}
		l.Error("join_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("join_success", "user_id", saved.ID)
	return saved, nil
}

// Login verifies credentials, issues a token pair and rotates the ledger so
// that the new refresh token is the only valid one for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	state := StateStart

	principal, err := s.authenticator().Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
			return nil, ErrAuthenticationFailed
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	user := principal.User()
	state = advance(l, StateCredentialsVerified)

	accessToken, accessExp, err := s.Tokens.IssueAccessToken(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.Tokens.IssueRefreshToken(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		locked, err := tx.LockByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		valid, err := tx.FindAllValid(ctx, locked.Email)
		if err != nil {
			return err
		}
		if err := tx.Revoke(ctx, valid); err != nil {
			return err
		}
		state = advance(l, StateOldTokensRevoked, "revoked", len(valid))

		if err := tx.SaveToken(ctx, &models.RefreshToken{
			Token:     refreshToken,
			TokenType: models.TokenTypeBearer,
			Email:     locked.Email,
		}); err != nil {
			return err
		}
		state = advance(l, StateNewTokenSaved)
		return nil
	})
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot rotate refresh tokens", "state", state.String(), "error", err)
		return nil, fmt.Errorf("rotate refresh tokens: %w", err)
	}

	if err := s.notifier().NotifyLogin(ctx, *user); err != nil {
		l.Warn("login_notification_failed", "user_id", user.ID, "error", err)
	}
	state = advance(l, StateDone)
	l.Info("login_successful", "user_id", user.ID)

	return &LoginResult{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		State:        state,
	}, nil
}

func advance(l *slog.Logger, to LoginState, attrs ...any) LoginState {
	l.Debug("login_state", append([]any{"state", to.String()}, attrs...)...)
	return to
}

// Refresh mints a new access token from the bearer refresh token in
// authHeader. Unless StrictRefresh is set, a missing, unreadable or invalid
// token yields (nil, nil). An unknown user is always an error.
func (s *AuthService) Refresh(ctx context.Context, authHeader string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	raw, ok := BearerToken(authHeader)
	if !ok {
		return s.skipRefresh(l, "missing_bearer", nil)
	}

	email, err := s.Tokens.ExtractSubject(raw)
	if err != nil {
		return s.skipRefresh(l, "malformed_token", err)
	}
	if email == "" {
		return s.skipRefresh(l, "no_subject", nil)
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_failed", "status", 404, "reason", "token references unknown user")
			return nil, ErrUserNotFound
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	valid, err := s.IsRefreshTokenValid(ctx, raw, user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if !valid {
		return s.skipRefresh(l, "invalid_token", nil)
	}

	accessToken, _, err := s.Tokens.IssueAccessToken(user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return &TokenPair{AccessToken: accessToken, RefreshToken: raw}, nil
}

func (s *AuthService) skipRefresh(l *slog.Logger, reason string, cause error) (*TokenPair, error) {
	if !s.StrictRefresh {
		l.Info("refresh_skipped", "reason", reason)
		return nil, nil
	}
	l.Warn("refresh_rejected", "status", 401, "reason", reason)
	if cause != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRefreshRejected, reason, cause)
	}
	return nil, fmt.Errorf("%w: %s", ErrRefreshRejected, reason)
}

// IsRefreshTokenValid combines the signature/expiry/subject check with the
// ledger: the token must be stored for this user and be neither expired nor
// revoked there.
func (s *AuthService) IsRefreshTokenValid(ctx context.Context, token string, user *models.User) (bool, error) {
	if !s.Tokens.IsTokenValid(token, user) {
		return false, nil
	}
	stored, err := s.Repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			return false, nil
		}
		return false, err
	}
	return stored.Valid() && stored.Email == user.Email, nil
}

// BearerToken extracts the credential from an "Authorization: Bearer <t>"
// value. The scheme is matched case-insensitively because login hands out
// "BEARER <t>".
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// Logout revokes the given refresh token. Unknown or empty tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if refreshToken == "" {
		return nil
	}

	revoked, err := s.Repo.RevokeByToken(ctx, refreshToken)
	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return err
	}
	l.Info("logout_successful", "revoked", revoked)
	return nil
}

func (s *AuthService) Me(ctx context.Context, email string) (*models.User, error) {
	return s.Repo.FindByEmail(ctx, email)
}

// UpdatePassword replaces the password hash and revokes every valid refresh
// token of the user in the same transaction.
func (s *AuthService) UpdatePassword(ctx context.Context, email, current, newPassword, confirm string) error {
	l := logging.FromContext(ctx).With("svc", "auth.update_password")

	if newPassword == "" || newPassword != confirm {
		return fmt.Errorf("%w: password confirmation does not match", ErrValidation)
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !s.Hasher.Matches(user.PasswordHash, current) {
		l.Warn("update_password_failed", "status", 401, "reason", "current password mismatch")
		return ErrAuthenticationFailed
	}

	pwHash, err := s.Hasher.Encode(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.SaveUser(ctx, user.UpdatePassword(pwHash)); err != nil {
			return err
		}
		valid, err := tx.FindAllValid(ctx, user.Email)
		if err != nil {
			return err
		}
		return tx.Revoke(ctx, valid)
	})
	if err != nil {
		l.Error("update_password_failed", "status", 500, "error", err)
		return err
	}

	l.Info("update_password_successful", "user_id", user.ID)
	return nil
}

func checkPasswordLength(password string) error {
	if len(password) > hash.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, hash.MaxPasswordBytes)
	}
	return nil
}

func (s *AuthService) UpdateNickname(ctx context.Context, email, nickname string) (*models.User, error) {
	nickname = strings.TrimSpace(nickname)
	if n := utf8.RuneCountInString(nickname); n == 0 || n > maxNicknameLength {
		return nil, fmt.Errorf("%w: nickname must be 1-%d characters", ErrValidation, maxNicknameLength)
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.Repo.SaveUser(ctx, user.UpdateNickname(nickname))
}
