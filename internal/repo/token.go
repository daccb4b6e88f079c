package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bbangting/auth/internal/models"
)

var ErrTokenNotFound = errors.New("refresh token not found")

func (r *GormRepo) FindAllValid(ctx context.Context, email string) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("email = ? AND expired = ? AND revoked = ?", email, false, false).
		Order("id").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("find valid tokens: %w", err)
	}
	return tokens, nil
}

func (r *GormRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &stored, nil
}

// Revoke flips expired and revoked on every row and writes them as one batch.
func (r *GormRepo) Revoke(ctx context.Context, tokens []models.RefreshToken) error {
	if len(tokens) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(tokens))
	for i := range tokens {
		tokens[i].Revoke()
		ids = append(ids, tokens[i].ID)
	}
	err := r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"expired": true, "revoked": true}).Error
	if err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

func (r *GormRepo) SaveToken(ctx context.Context, t *models.RefreshToken) error {
	if t.TokenType == "" {
		t.TokenType = models.TokenTypeBearer
	}
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// RevokeByToken revokes a single row by its token value. Unknown tokens are
// not an error.
func (r *GormRepo) RevokeByToken(ctx context.Context, token string) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ? AND (expired = ? OR revoked = ?)", token, false, false).
		Updates(map[string]any{"expired": true, "revoked": true})
	if result.Error != nil {
		return false, fmt.Errorf("revoke token: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
