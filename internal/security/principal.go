package security

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bbangting/auth/internal/hash"
	"github.com/bbangting/auth/internal/models"
	"github.com/bbangting/auth/internal/repo"
)

var ErrAuthenticationFailed = errors.New("authentication failed")

const rolePrefix = "ROLE_"

// Principal is what the authentication layer knows about a caller.
type Principal interface {
	Username() string
	Password() string
	Authorities() []string
}

// UserPrincipal adapts a stored user to Principal without the entity
// knowing anything about authentication.
type UserPrincipal struct {
	user *models.User
}

func FromUser(u *models.User) UserPrincipal {
	return UserPrincipal{user: u}
}

func (p UserPrincipal) Username() string { return p.user.Email }

func (p UserPrincipal) Password() string { return p.user.PasswordHash }

func (p UserPrincipal) Authorities() []string {
	role := p.user.Role
	if role == "" {
		role = models.RoleUser
	}
	return []string{rolePrefix + string(role)}
}

func (p UserPrincipal) User() *models.User { return p.user }

func HasAuthority(p Principal, authority string) bool {
	for _, a := range p.Authorities() {
		if a == authority {
			return true
		}
	}
	return false
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator checks an email/password pair against the stored hash.
// Unknown emails are compared against a dummy hash so they cost as much as
// a wrong password.
type Authenticator struct {
	Users  UserFinder
	Hasher hash.Encoder

	dummyOnce sync.Once
	dummyHash string
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		if h, err := a.Hasher.Encode("unknown-account-placeholder"); err == nil {
			a.dummyHash = h
		}
	})
	return a.dummyHash
}

func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (UserPrincipal, error) {
	user, err := a.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			a.Hasher.Matches(a.dummy(), password)
			return UserPrincipal{}, ErrAuthenticationFailed
		}
		return UserPrincipal{}, fmt.Errorf("authenticate: %w", err)
	}
	if !a.Hasher.Matches(user.PasswordHash, password) {
		return UserPrincipal{}, ErrAuthenticationFailed
	}
	return FromUser(user), nil
}
