package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zenshift/zenshift-backend/internal/lib/jwt"
	"github.com/zenshift/zenshift-backend/internal/lib/password"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error) {
	args := m.Called(ctx, facebookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByVerifyEmailToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByResetPasswordToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *MockUserRepository) SetVerifyEmailToken(ctx context.Context, userUID, token string, expire time.Time) error {
	args := m.Called(ctx, userUID, token, expire)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetPasswordToken(ctx context.Context, userUID, token string, expire time.Time) error {
	args := m.Called(ctx, userUID, token, expire)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	args := m.Called(ctx, userUID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserProfile(ctx context.Context, userUID, name, email, passwordHash string) error {
	args := m.Called(ctx, userUID, name, email, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) LinkSocialAccount(ctx context.Context, userUID, provider, providerUID, name, avatar string) error {
	args := m.Called(ctx, userUID, provider, providerUID, name, avatar)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) EnqueueVerifyEmail(name, email, token string) error {
	args := m.Called(name, email, token)
	return args.Error(0)
}

func (m *MockMailer) EnqueueResetPassword(name, email, token string) error {
	args := m.Called(name, email, token)
	return args.Error(0)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*SocialProfile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SocialProfile), args.Error(1)
}

func newTestService(users UserRepository, mailer Mailer, verifiers map[string]SocialVerifier) *Service {
	maker := jwt.NewJWTMaker("test-secret", time.Hour, time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(users, mailer, maker, verifiers, time.Hour, log)
}

func TestRegister_Success(t *testing.T) {
	users := &MockUserRepository{}
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(nil, repository.ErrNotFound)
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "alice@example.com" &&
			u.Name == "Alice" &&
			u.PasswordHash != "" && u.PasswordHash != "secret123" &&
			u.VerifyEmail.IsSet()
	})).Return("uid-1", nil)

	mailer := &MockMailer{}
	mailer.On("EnqueueVerifyEmail", "Alice", "alice@example.com", mock.Anything).Return(nil)

	svc := newTestService(users, mailer, nil)

	uid, err := svc.Register(context.Background(), "Alice", " Alice@Example.COM ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	users := &MockUserRepository{}
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{UID: "uid-1", Email: "alice@example.com"}, nil)

	svc := newTestService(users, &MockMailer{}, nil)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123")
	require.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_MailerFailureDoesNotFailRegistration(t *testing.T) {
	users := &MockUserRepository{}
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(nil, repository.ErrNotFound)
	users.On("CreateUser", mock.Anything, mock.Anything).Return("uid-1", nil)

	mailer := &MockMailer{}
	mailer.On("EnqueueVerifyEmail", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	svc := newTestService(users, mailer, nil)

	uid, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
}

func TestLogin(t *testing.T) {
	hashed, err := password.GetHash("secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		user     *models.User
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful login",
			email:    "alice@example.com",
			password: "secret123",
			user:     &models.User{UID: "uid-1", Email: "alice@example.com", PasswordHash: hashed},
		},
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "wrong",
			user:     &models.User{UID: "uid-1", Email: "alice@example.com", PasswordHash: hashed},
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "ghost@example.com",
			password: "secret123",
			repoErr:  repository.ErrNotFound,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "social-only account has no password",
			email:    "social@example.com",
			password: "secret123",
			user:     &models.User{UID: "uid-2", Email: "social@example.com", GoogleID: "g-1"},
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserRepository{}
			if tt.repoErr != nil {
				users.On("GetUserByEmail", mock.Anything, tt.email).Return(nil, tt.repoErr)
			} else {
				users.On("GetUserByEmail", mock.Anything, tt.email).Return(tt.user, nil)
			}

			svc := newTestService(users, &MockMailer{}, nil)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, tt.user.UID, user.UID)
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		token    string
		user     *models.User
		repoErr  error
		wantErr  error
		verified bool
	}{
		{
			name:  "valid token",
			token: "tok-valid",
			user: &models.User{
				UID:         "uid-1",
				VerifyEmail: models.TokenPair{Token: "tok-valid", Expire: &future},
			},
			verified: true,
		},
		{
			name:  "expired token",
			token: "tok-old",
			user: &models.User{
				UID:         "uid-1",
				VerifyEmail: models.TokenPair{Token: "tok-old", Expire: &past},
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "unknown token",
			token:   "tok-ghost",
			repoErr: repository.ErrNotFound,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserRepository{}
			if tt.repoErr != nil {
				users.On("GetUserByVerifyEmailToken", mock.Anything, tt.token).Return(nil, tt.repoErr)
			} else {
				users.On("GetUserByVerifyEmailToken", mock.Anything, tt.token).Return(tt.user, nil)
			}
			if tt.verified {
				users.On("MarkEmailVerified", mock.Anything, tt.user.UID).Return(nil)
			}

			svc := newTestService(users, &MockMailer{}, nil)

			err := svc.VerifyEmail(context.Background(), tt.token)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestForgotPassword_UnknownEmailSilentlySucceeds(t *testing.T) {
	users := &MockUserRepository{}
	users.On("GetUserByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.ErrNotFound)

	mailer := &MockMailer{}
	svc := newTestService(users, mailer, nil)

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	mailer.AssertNotCalled(t, "EnqueueResetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestForgotPassword_KnownEmail(t *testing.T) {
	users := &MockUserRepository{}
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{UID: "uid-1", Name: "Alice", Email: "alice@example.com"}, nil)
	users.On("SetResetPasswordToken", mock.Anything, "uid-1", mock.Anything, mock.Anything).Return(nil)

	mailer := &MockMailer{}
	mailer.On("EnqueueResetPassword", "Alice", "alice@example.com", mock.Anything).Return(nil)

	svc := newTestService(users, mailer, nil)

	err := svc.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)
	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestResetPassword(t *testing.T) {
	future := time.Now().Add(time.Hour)

	users := &MockUserRepository{}
	users.On("GetUserByResetPasswordToken", mock.Anything, "tok-reset").
		Return(&models.User{
			UID:           "uid-1",
			ResetPassword: models.TokenPair{Token: "tok-reset", Expire: &future},
		}, nil)
	users.On("UpdatePassword", mock.Anything, "uid-1", mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "newsecret") == nil
	})).Return(nil)

	svc := newTestService(users, &MockMailer{}, nil)

	err := svc.ResetPassword(context.Background(), "tok-reset", "newsecret")
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	users := &MockUserRepository{}
	users.On("GetUserByResetPasswordToken", mock.Anything, "tok-old").
		Return(&models.User{
			UID:           "uid-1",
			ResetPassword: models.TokenPair{Token: "tok-old", Expire: &past},
		}, nil)

	svc := newTestService(users, &MockMailer{}, nil)

	err := svc.ResetPassword(context.Background(), "tok-old", "newsecret")
	require.ErrorIs(t, err, ErrInvalidToken)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestSocialLogin_ExistingProviderAccount(t *testing.T) {
	user := &models.User{UID: "uid-1", Email: "alice@example.com", GoogleID: "g-123"}

	users := &MockUserRepository{}
	users.On("GetUserByGoogleID", mock.Anything, "g-123").Return(user, nil)

	verifier := &MockVerifier{}
	verifier.On("Verify", mock.Anything, "ext-token").Return(&SocialProfile{
		ProviderUID: "g-123",
		Email:       "alice@example.com",
		Name:        "Alice",
	}, nil)

	svc := newTestService(users, &MockMailer{}, map[string]SocialVerifier{"google": verifier})

	token, got, err := svc.SocialLogin(context.Background(), "google", "ext-token")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-1", got.UID)
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestSocialLogin_LinksExistingEmailAccount(t *testing.T) {
	existing := &models.User{UID: "uid-1", Email: "alice@example.com"}
	linked := &models.User{UID: "uid-1", Email: "alice@example.com", GoogleID: "g-123", IsEmailVerified: true}

	users := &MockUserRepository{}
	users.On("GetUserByGoogleID", mock.Anything, "g-123").Return(nil, repository.ErrNotFound)
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(existing, nil)
	users.On("LinkSocialAccount", mock.Anything, "uid-1", "google", "g-123", "Alice", "https://example.com/a.png").Return(nil)
	users.On("GetUser", mock.Anything, "uid-1").Return(linked, nil)

	verifier := &MockVerifier{}
	verifier.On("Verify", mock.Anything, "ext-token").Return(&SocialProfile{
		ProviderUID: "g-123",
		Email:       "Alice@Example.com",
		Name:        "Alice",
		Avatar:      "https://example.com/a.png",
	}, nil)

	svc := newTestService(users, &MockMailer{}, map[string]SocialVerifier{"google": verifier})

	token, got, err := svc.SocialLogin(context.Background(), "google", "ext-token")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "g-123", got.GoogleID)
	users.AssertExpectations(t)
}

func TestSocialLogin_CreatesNewUser(t *testing.T) {
	created := &models.User{UID: "uid-new", Email: "bob@example.com", FacebookID: "f-9", IsEmailVerified: true}

	users := &MockUserRepository{}
	users.On("GetUserByFacebookID", mock.Anything, "f-9").Return(nil, repository.ErrNotFound)
	users.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(nil, repository.ErrNotFound)
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.FacebookID == "f-9" && u.IsEmailVerified && u.PasswordHash == ""
	})).Return("uid-new", nil)
	users.On("GetUser", mock.Anything, "uid-new").Return(created, nil)

	verifier := &MockVerifier{}
	verifier.On("Verify", mock.Anything, "fb-token").Return(&SocialProfile{
		ProviderUID: "f-9",
		Email:       "bob@example.com",
		Name:        "Bob",
	}, nil)

	svc := newTestService(users, &MockMailer{}, map[string]SocialVerifier{"facebook": verifier})

	token, got, err := svc.SocialLogin(context.Background(), "facebook", "fb-token")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-new", got.UID)
	users.AssertExpectations(t)
}

func TestSocialLogin_UnknownProvider(t *testing.T) {
	svc := newTestService(&MockUserRepository{}, &MockMailer{}, nil)

	_, _, err := svc.SocialLogin(context.Background(), "vk", "token")
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestUpdateProfile(t *testing.T) {
	existing := &models.User{
		UID:          "uid-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "old-hash",
	}

	t.Run("пустые поля не изменяются", func(t *testing.T) {
		users := &MockUserRepository{}
		users.On("GetUser", mock.Anything, "uid-1").Return(existing, nil)
		users.On("UpdateUserProfile", mock.Anything, "uid-1", "Alice B.", "alice@example.com", "old-hash").
			Return(nil)

		svc := newTestService(users, &MockMailer{}, nil)

		got, err := svc.UpdateProfile(context.Background(), "uid-1", "Alice B.", "", "")
		require.NoError(t, err)
		assert.Equal(t, "Alice B.", got.Name)
		assert.Equal(t, "alice@example.com", got.Email)
		users.AssertExpectations(t)
	})

	t.Run("новый пароль хэшируется", func(t *testing.T) {
		users := &MockUserRepository{}
		users.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
			UID: "uid-1", Name: "Alice", Email: "alice@example.com", PasswordHash: "old-hash",
		}, nil)
		users.On("UpdateUserProfile", mock.Anything, "uid-1", "Alice", "alice@example.com",
			mock.MatchedBy(func(hash string) bool {
				return hash != "" && hash != "old-hash" && hash != "newsecret"
			})).Return(nil)

		svc := newTestService(users, &MockMailer{}, nil)

		_, err := svc.UpdateProfile(context.Background(), "uid-1", "", "", "newsecret")
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("занятая почта дает ErrEmailTaken", func(t *testing.T) {
		users := &MockUserRepository{}
		users.On("GetUser", mock.Anything, "uid-1").Return(existing, nil)
		users.On("GetUserByEmail", mock.Anything, "bob@example.com").
			Return(&models.User{UID: "uid-2"}, nil)

		svc := newTestService(users, &MockMailer{}, nil)

		_, err := svc.UpdateProfile(context.Background(), "uid-1", "", "Bob@Example.com", "")
		require.ErrorIs(t, err, ErrEmailTaken)
		users.AssertNotCalled(t, "UpdateUserProfile",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		users := &MockUserRepository{}
		users.On("GetUser", mock.Anything, "uid-404").Return(nil, repository.ErrNotFound)

		svc := newTestService(users, &MockMailer{}, nil)

		_, err := svc.UpdateProfile(context.Background(), "uid-404", "Alice", "", "")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}
