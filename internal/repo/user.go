package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bbangting/auth/internal/models"
)

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// LockByEmail loads the user row with FOR UPDATE so concurrent logins of the
// same user serialize on it. Dialects without row locks ignore the clause.
func (r *GormRepo) LockByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return &user, nil
}

// SaveUser inserts a new user (ID == 0) or updates an existing one.
func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) (*models.User, error) {
	db := r.DB.WithContext(ctx)
	var err error
	if u.ID == 0 {
		err = db.Create(u).Error
	} else {
		err = db.Save(u).Error
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}
