// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/family-hub/internal/lib/jwt"
	"github.com/magabrotheeeer/family-hub/internal/lib/password"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// ErrAccountLocked возвращается при попытке входа заблокированного пользователя.
var ErrAccountLocked = errors.New("account is locked")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Новая учётная запись не имеет подписки и прав поддержки: административные
// полномочия в группах даёт пробный период от даты создания.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:         req.Email,
		Username:      req.Username,
		PasswordHash:  hashed,
		IsSupportUser: false,
		IsSubscribed:  false,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user.IsLocked {
		return "", ErrAccountLocked
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", errors.New("invalid credentials")
	}
	return s.jwtMaker.GenerateToken(user.Username, user.UID, user.IsSupportUser)
}

// ValidateToken проверяет JWT и возвращает claims, если токен корректен.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
