package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
	"github.com/ignatzorin/portfolio-backend/internal/repository"
	"github.com/ignatzorin/portfolio-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, refreshToken string) (*models.Session, error)
	RotateSession(ctx context.Context, oldRefreshToken string, session *models.Session) error
	DeleteSession(ctx context.Context, refreshToken string) error
}

// SessionEnder сбрасывает несохранённые формы владельца при выходе.
type SessionEnder interface {
	EndSession(ownerID uuid.UUID)
}

// AuthService инкапсулирует регистрацию и аутентификацию владельца портфолио.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
	sessions     SessionEnder
	allowSignup  bool
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации. sessions может быть nil.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager, sessions SessionEnder, allowSignup bool) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
		sessions:     sessions,
		allowSignup:  allowSignup,
	}
}

// Register создаёт владельца и открывает первую сессию.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta map[string]string) (*AuthResult, error) {
	if !s.allowSignup {
		return nil, apperror.ErrSignupDisabled
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err.Error(), "email")
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err.Error(), "password")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, apperror.Validation(err.Error(), "name")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.Remote(err, "не удалось проверить email")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(passHash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.Remote(err, "не удалось создать пользователя")
	}

	return s.openSession(ctx, user, meta)
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta map[string]string) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err.Error(), "email")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperror.Remote(err, "не удалось выполнить вход")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	// вход не зависит от успеха этой записи
	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	return s.openSession(ctx, user, meta)
}

// Refresh меняет refresh токен на новую пару. Старый токен становится недействительным.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta map[string]string) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.ErrSessionExpired
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrSessionExpired
	}

	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrSessionExpired
	}
	if err != nil {
		return nil, apperror.Remote(err, "не удалось обновить сессию")
	}

	tokenPair, _, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	session := newSession(user.ID, tokenPair.RefreshToken, meta)
	session.ExpiresAt = refreshExp

	err = s.repo.RotateSession(ctx, oldToken, session)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, apperror.ErrSessionExpired
	}
	if err != nil {
		return nil, apperror.Remote(err, "не удалось обновить сессию")
	}

	return tokenPair, nil
}

// Logout закрывает сессию и сбрасывает несохранённые формы владельца.
// Повторный выход с тем же токеном не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.repo.GetSession(ctx, refreshToken)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Remote(err, "не удалось завершить сессию")
	}

	if err := s.repo.DeleteSession(ctx, refreshToken); err != nil {
		return apperror.Remote(err, "не удалось завершить сессию")
	}

	if s.sessions != nil {
		s.sessions.EndSession(session.UserID)
	}
	return nil
}

// Owner возвращает идентичность владельца по access токену.
func (s *AuthService) Owner(accessToken string) (portfolio.Owner, error) {
	owner, err := s.tokenManager.ParseAccess(accessToken)
	if err != nil {
		return portfolio.Owner{}, apperror.ErrSessionExpired
	}
	return owner, nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, meta map[string]string) (*AuthResult, error) {
	tokenPair, _, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	session := newSession(user.ID, tokenPair.RefreshToken, meta)
	session.ExpiresAt = refreshExp

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, apperror.Remote(err, "не удалось создать сессию")
	}

	return &AuthResult{
		User:      user,
		TokenPair: tokenPair,
	}, nil
}

func newSession(userID uuid.UUID, refreshToken string, meta map[string]string) *models.Session {
	session := &models.Session{
		UserID:       userID,
		RefreshToken: refreshToken,
	}
	if ua, ok := meta["user_agent"]; ok && ua != "" {
		session.UserAgent = &ua
	}
	if ip, ok := meta["ip"]; ok && ip != "" {
		session.IPAddress = &ip
	}
	return session
}
