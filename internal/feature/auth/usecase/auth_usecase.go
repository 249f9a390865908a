package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"trading_backend/internal/feature/auth/domain/entity"
)

// MinPasswordLength はパスワードの最低文字数です。
const MinPasswordLength = 8

// ユーザーが存在しない場合にも比較を行うためのダミーハッシュ
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーの永続化を抽象化します。
type UserRepository interface {
	// Create は重複時にErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail は未登録ならErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenGenerator は署名済みアクセストークンを発行します。
type TokenGenerator interface {
	GenerateToken(userID uint, email string) (string, error)
}

type authUsecase struct {
	users  UserRepository
	tokens TokenGenerator
	cost   int
}

func NewAuthUsecase(users UserRepository, tokens TokenGenerator) *authUsecase {
	return &authUsecase{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup はパスワードをbcryptでハッシュ化してユーザーを登録します。
func (u *authUsecase) Signup(ctx context.Context, email, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: at least %d characters", ErrWeakPassword, MinPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{Email: normalizeEmail(email), Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return err
	}
	zap.L().Info("user registered", zap.Uint("user_id", user.ID))
	return nil
}

// Login は資格情報を検証してJWTを返します。
// 未登録のメールアドレスでもbcrypt比較を行い、応答時間で存在を推測されないようにします。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	hash := dummyHash
	if user != nil {
		hash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if user == nil || compareErr != nil {
		return "", ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
