package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"trading_backend/internal/feature/auth/domain/entity"
	"trading_backend/internal/feature/auth/usecase"
	"trading_backend/internal/platform/db/dbtest"
)

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserRepository(dbtest.Open(t, &entity.User{}))

		user := &entity.User{Email: "test@example.com", Password: "hashed_password"}
		require.NoError(t, repo.Create(context.Background(), user))

		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserRepository(dbtest.Open(t, &entity.User{}))
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, &entity.User{Email: "dup@example.com", Password: "p1"}))
		err := repo.Create(ctx, &entity.User{Email: "dup@example.com", Password: "p2"})

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("nil user error", func(t *testing.T) {
		repo := NewUserRepository(dbtest.Open(t, &entity.User{}))
		assert.Error(t, repo.Create(context.Background(), nil))
	})
}

func TestUserGorm_Find(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t, &entity.User{}))
	ctx := context.Background()

	user := &entity.User{Email: "find@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.FindByEmail(ctx, "find@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hashed", got.Password)

	got, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "find@example.com", got.Email)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)

	_, err = repo.FindByID(ctx, user.ID+100)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicate(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isDuplicate(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicate(errors.New("boom")))
}
