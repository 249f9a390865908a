package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trading_backend/internal/feature/auth/domain/entity"
	"trading_backend/internal/feature/auth/usecase"
)

var errDB = errors.New("database error")

type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	CreateCalls     int
	FindCalls       int
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return errors.New("CreateFunc is not implemented")
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.FindCalls++
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, errors.New("FindByEmailFunc is not implemented")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return nil, usecase.ErrUserNotFound
}

type mockTokenGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockTokenGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "token", nil
}

func TestAuthUsecase_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("success: stores bcrypt hash and lower-cased email", func(t *testing.T) {
		var saved *entity.User
		repo := &mockUserRepository{CreateFunc: func(ctx context.Context, user *entity.User) error {
			saved = user
			user.ID = 1
			return nil
		}}
		uc := usecase.NewAuthUsecase(repo, &mockTokenGenerator{})

		require.NoError(t, uc.Signup(ctx, " User@Example.com ", "password123"))
		require.NotNil(t, saved)
		assert.Equal(t, "user@example.com", saved.Email)
		assert.NotEqual(t, "password123", saved.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("password123")))
	})

	t.Run("failure: short password", func(t *testing.T) {
		repo := &mockUserRepository{}
		uc := usecase.NewAuthUsecase(repo, &mockTokenGenerator{})

		err := uc.Signup(ctx, "user@example.com", "short")
		assert.ErrorIs(t, err, usecase.ErrWeakPassword)
		assert.Zero(t, repo.CreateCalls)
	})

	t.Run("failure: duplicate email", func(t *testing.T) {
		repo := &mockUserRepository{CreateFunc: func(ctx context.Context, user *entity.User) error {
			return usecase.ErrEmailAlreadyExists
		}}
		uc := usecase.NewAuthUsecase(repo, &mockTokenGenerator{})

		assert.ErrorIs(t, uc.Signup(ctx, "user@example.com", "password123"), usecase.ErrEmailAlreadyExists)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &entity.User{ID: 7, Email: "user@example.com", Password: string(hash)}

	testCases := []struct {
		name          string
		email         string
		password      string
		findErr       error
		tokenErr      error
		expectedToken string
		expectedErr   error
	}{
		{name: "success", email: "USER@example.com", password: "password123", expectedToken: "signed"},
		{name: "failure: wrong password", email: "user@example.com", password: "wrong-password", expectedErr: usecase.ErrInvalidCredentials},
		{name: "failure: unknown user", email: "nobody@example.com", password: "password123", findErr: usecase.ErrUserNotFound, expectedErr: usecase.ErrInvalidCredentials},
		{name: "failure: repository error", email: "user@example.com", password: "password123", findErr: errDB, expectedErr: errDB},
		{name: "failure: token error", email: "user@example.com", password: "password123", tokenErr: errors.New("sign")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockUserRepository{FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				assert.Equal(t, "user@example.com", email)
				if tc.findErr != nil {
					return nil, tc.findErr
				}
				return stored, nil
			}}
			if tc.email == "nobody@example.com" {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
					return nil, tc.findErr
				}
			}
			tokens := &mockTokenGenerator{GenerateTokenFunc: func(userID uint, email string) (string, error) {
				assert.Equal(t, uint(7), userID)
				if tc.tokenErr != nil {
					return "", tc.tokenErr
				}
				return "signed", nil
			}}

			token, err := usecase.NewAuthUsecase(repo, tokens).Login(ctx, tc.email, tc.password)
			switch {
			case tc.tokenErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.tokenErr)
			case tc.expectedErr != nil:
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, token)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expectedToken, token)
			}
		})
	}
}
