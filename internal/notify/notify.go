// Package notify delivers login notifications to the outside world.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/bbangting/auth/internal/models"
)

const EventUserLoggedIn = "user_logged_in"

// Notifier receives a snapshot of the user that just logged in.
type Notifier interface {
	NotifyLogin(ctx context.Context, u models.User) error
}

type LoginEvent struct {
	Type     string    `json:"type"`
	UserID   uint      `json:"user_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Nickname string    `json:"nickname"`
	At       time.Time `json:"at"`
}

func NewLoginEvent(u models.User, at time.Time) LoginEvent {
	return LoginEvent{
		Type:     EventUserLoggedIn,
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Nickname: u.Nickname,
		At:       at.UTC(),
	}
}

type Nop struct{}

func (Nop) NotifyLogin(context.Context, models.User) error { return nil }

// Fanout calls every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) NotifyLogin(ctx context.Context, u models.User) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyLogin(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
