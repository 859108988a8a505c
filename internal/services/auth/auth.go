// Package auth содержит бизнес-логику учетных записей: регистрацию,
// вход по паролю и через внешних провайдеров, подтверждение почты и
// сброс пароля.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zenshift/zenshift-backend/internal/lib/jwt"
	"github.com/zenshift/zenshift-backend/internal/lib/password"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/storage/repository"
)

// Ошибки бизнес-уровня, обрабатываемые на границе HTTP.
var (
	// ErrEmailTaken почта уже занята другим пользователем.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials пара почта+пароль не подходит.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken токен подтверждения или сброса не найден либо истек.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound пользователь не найден в хранилище.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownProvider неизвестный провайдер социального входа.
	ErrUnknownProvider = errors.New("unknown social provider")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error)
	GetUserByVerifyEmailToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetPasswordToken(ctx context.Context, token string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, userUID string) error
	SetVerifyEmailToken(ctx context.Context, userUID, token string, expire time.Time) error
	SetResetPasswordToken(ctx context.Context, userUID, token string, expire time.Time) error
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
	UpdateUserProfile(ctx context.Context, userUID, name, email, passwordHash string) error
	LinkSocialAccount(ctx context.Context, userUID, provider, providerUID, name, avatar string) error
	DeleteUser(ctx context.Context, userUID string) error
}

// Mailer ставит транзакционные письма в очередь на отправку.
type Mailer interface {
	EnqueueVerifyEmail(name, email, token string) error
	EnqueueResetPassword(name, email, token string) error
}

// SocialProfile — проверенный профиль пользователя у внешнего провайдера.
type SocialProfile struct {
	ProviderUID string
	Email       string
	Name        string
	Avatar      string
}

// SocialVerifier проверяет токен внешнего провайдера и возвращает профиль.
type SocialVerifier interface {
	Verify(ctx context.Context, token string) (*SocialProfile, error)
}

// Service отвечает за учетные записи и выдачу сессионных JWT.
type Service struct {
	users         UserRepository
	mailer        Mailer
	jwtMaker      jwt.Maker
	verifiers     map[string]SocialVerifier
	emailTokenTTL time.Duration
	log           *slog.Logger
}

// New создает новый Service. verifiers сопоставляет имя провайдера
// (google, facebook) его проверке токена.
func New(users UserRepository, mailer Mailer, jwtMaker jwt.Maker,
	verifiers map[string]SocialVerifier, emailTokenTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		users:         users,
		mailer:        mailer,
		jwtMaker:      jwtMaker,
		verifiers:     verifiers,
		emailTokenTTL: emailTokenTTL,
		log:           log,
	}
}

// Register создает нового пользователя с хэшированным паролем и ставит в
// очередь письмо подтверждения почты. Ошибка постановки письма не отменяет
// регистрацию: пользователь сможет запросить письмо повторно.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (string, error) {
	const op = "auth.Register"

	email = normalizeEmail(email)

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateEmailToken(email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	expire := time.Now().Add(s.emailTokenTTL)

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		VerifyEmail:  models.TokenPair{Token: token, Expire: &expire},
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mailer.EnqueueVerifyEmail(name, email, token); err != nil {
		s.log.Error("failed to enqueue verification email",
			slog.String("user_uid", uid), sl.Err(err))
	}

	s.log.Info("user registered", slog.String("user_uid", uid))
	return uid, nil
}

// Login проверяет пару почта+пароль и возвращает сессионный JWT.
// Не найденный пользователь и неверный пароль неразличимы для вызывающего.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.PasswordHash == "" {
		// Чисто социальный аккаунт, пароля нет
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// SocialLogin проверяет токен внешнего провайдера и возвращает сессионный JWT.
// Существующий аккаунт с той же почтой привязывается к провайдеру, иначе
// создается новый с подтвержденной почтой.
func (s *Service) SocialLogin(ctx context.Context, provider, externalToken string) (string, *models.User, error) {
	const op = "auth.SocialLogin"

	verifier, ok := s.verifiers[provider]
	if !ok {
		return "", nil, fmt.Errorf("%s: %q: %w", op, provider, ErrUnknownProvider)
	}

	profile, err := verifier.Verify(ctx, externalToken)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	profile.Email = normalizeEmail(profile.Email)

	user, err := s.findOrCreateSocialUser(ctx, provider, profile)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

func (s *Service) findOrCreateSocialUser(ctx context.Context, provider string, profile *SocialProfile) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	switch provider {
	case "google":
		user, err = s.users.GetUserByGoogleID(ctx, profile.ProviderUID)
	case "facebook":
		user, err = s.users.GetUserByFacebookID(ctx, profile.ProviderUID)
	default:
		return nil, fmt.Errorf("%q: %w", provider, ErrUnknownProvider)
	}
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Аккаунт с той же почтой привязываем к провайдеру
	user, err = s.users.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		if err := s.users.LinkSocialAccount(ctx, user.UID, provider,
			profile.ProviderUID, profile.Name, profile.Avatar); err != nil {
			return nil, err
		}
		s.log.Info("linked social account",
			slog.String("user_uid", user.UID), slog.String("provider", provider))
		return s.users.GetUser(ctx, user.UID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	newUser := models.User{
		Name:            profile.Name,
		Email:           profile.Email,
		Avatar:          profile.Avatar,
		IsEmailVerified: true,
	}
	switch provider {
	case "google":
		newUser.GoogleID = profile.ProviderUID
	case "facebook":
		newUser.FacebookID = profile.ProviderUID
	}
	uid, err := s.users.CreateUser(ctx, newUser)
	if err != nil {
		return nil, err
	}
	s.log.Info("created user from social login",
		slog.String("user_uid", uid), slog.String("provider", provider))
	return s.users.GetUser(ctx, uid)
}

// VerifyEmail подтверждает почту по токену из письма.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	const op = "auth.VerifyEmail"

	user, err := s.users.GetUserByVerifyEmailToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !user.VerifyEmail.IsValid(token, time.Now()) {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if err := s.users.MarkEmailVerified(ctx, user.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email verified", slog.String("user_uid", user.UID))
	return nil
}

// ForgotPassword выдает токен сброса и ставит письмо в очередь.
// Для незнакомой почты молча завершается успехом, чтобы по ответу нельзя
// было перебирать зарегистрированные адреса.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	email = normalizeEmail(email)
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateEmailToken(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetResetPasswordToken(ctx, user.UID, token, time.Now().Add(s.emailTokenTTL)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.mailer.EnqueueResetPassword(user.Name, user.Email, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset email enqueued", slog.String("user_uid", user.UID))
	return nil
}

// ResetPassword устанавливает новый пароль по токену из письма.
func (s *Service) ResetPassword(ctx context.Context, token, rawPassword string) error {
	const op = "auth.ResetPassword"

	user, err := s.users.GetUserByResetPasswordToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !user.ResetPassword.IsValid(token, time.Now()) {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, user.UID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset", slog.String("user_uid", user.UID))
	return nil
}

// GetProfile возвращает профиль пользователя по его UID.
func (s *Service) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	const op = "auth.GetProfile"

	user, err := s.users.GetUser(ctx, userUID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile обновляет имя, почту и пароль пользователя. Пустые поля
// остаются без изменений, новый пароль хэшируется перед записью.
func (s *Service) UpdateProfile(ctx context.Context, userUID, name, email, rawPassword string) (*models.User, error) {
	const op = "auth.UpdateProfile"

	user, err := s.users.GetUser(ctx, userUID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if name != "" {
		user.Name = name
	}

	if email = normalizeEmail(email); email != "" && email != user.Email {
		_, err = s.users.GetUserByEmail(ctx, email)
		if err == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.Email = email
	}

	if rawPassword != "" {
		hashed, err := password.GetHash(rawPassword)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hashed
	}

	if err = s.users.UpdateUserProfile(ctx, user.UID, user.Name, user.Email, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("user_uid", user.UID))
	return user, nil
}

// DeleteAccount удаляет учетную запись пользователя.
func (s *Service) DeleteAccount(ctx context.Context, userUID string) error {
	const op = "auth.DeleteAccount"

	err := s.users.DeleteUser(ctx, userUID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user account deleted", slog.String("user_uid", userUID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
