package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbangting/auth/internal/db/dbtest"
	"github.com/bbangting/auth/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(dbtest.New(t))
}

func seedUser(t *testing.T, r *GormRepo, email string) *models.User {
	t.Helper()
	u, err := r.SaveUser(context.Background(), &models.User{
		Email:        email,
		PasswordHash: "hash",
		Username:     "name",
		Nickname:     "nick",
		Role:         models.RoleUser,
		Type:         models.AccountGeneral,
	})
	require.NoError(t, err)
	return u
}

func TestGormRepo_FindByEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	created := seedUser(t, r, "a@x.com")
	found, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, models.RoleUser, found.Role)
	assert.Equal(t, 0, found.BanCount)
}

func TestGormRepo_SaveUser_DuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	seedUser(t, r, "a@x.com")

	_, err := r.SaveUser(context.Background(), &models.User{
		Email:        "a@x.com",
		PasswordHash: "other",
		Username:     "other",
		Nickname:     "other",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateEmail))
}

func TestGormRepo_SaveUser_Updates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com")

	u.UpdateNickname("renamed")
	_, err := r.SaveUser(ctx, u)
	require.NoError(t, err)

	found, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Nickname)
}

func TestGormRepo_LockByEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "a@x.com")

	err := r.Transaction(ctx, func(tx *GormRepo) error {
		u, err := tx.LockByEmail(ctx, "a@x.com")
		if err != nil {
			return err
		}
		assert.Equal(t, "a@x.com", u.Email)
		_, err = tx.LockByEmail(ctx, "missing@x.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestGormRepo_LedgerRevokeAndFindValid(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for _, tok := range []string{"t1", "t2"} {
		require.NoError(t, r.SaveToken(ctx, &models.RefreshToken{Token: tok, Email: "a@x.com"}))
	}
	require.NoError(t, r.SaveToken(ctx, &models.RefreshToken{Token: "other", Email: "b@x.com"}))

	valid, err := r.FindAllValid(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, valid, 2)
	assert.Equal(t, models.TokenTypeBearer, valid[0].TokenType)

	require.NoError(t, r.Revoke(ctx, valid))
	for _, tok := range valid {
		assert.True(t, tok.Expired)
		assert.True(t, tok.Revoked)
	}

	valid, err = r.FindAllValid(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, valid)

	stored, err := r.FindByToken(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, stored.Expired)
	assert.True(t, stored.Revoked)

	untouched, err := r.FindAllValid(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Len(t, untouched, 1)
}

func TestGormRepo_Revoke_Empty(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Revoke(context.Background(), nil))
}

func TestGormRepo_RevokeByToken(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.SaveToken(ctx, &models.RefreshToken{Token: "t1", Email: "a@x.com"}))

	ok, err := r.RevokeByToken(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.RevokeByToken(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok, "already revoked row is not touched again")

	ok, err = r.RevokeByToken(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.FindByToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestGormRepo_Transaction_RollsBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.SaveToken(ctx, &models.RefreshToken{Token: "t1", Email: "a@x.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	valid, err := r.FindAllValid(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, valid)
}
