package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zenshift/zenshift-backend/internal/models"
)

const userColumns = `uid, name, email, password_hash, avatar, google_id, facebook_id,
	is_email_verified, verify_email_token, verify_email_expire,
	reset_password_token, reset_password_expire,
	subscription_plan, subscription_status, stripe_customer_id, stripe_subscription_id,
	created_at, updated_at`

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Уникальность email, google_id и facebook_id обеспечивается индексами базы.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	var newUID string
	query := `INSERT INTO users (name, email, password_hash, avatar, google_id, facebook_id,
			      is_email_verified, verify_email_token, verify_email_expire)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, nullString(user.PasswordHash), nullString(user.Avatar),
		nullString(user.GoogleID), nullString(user.FacebookID), user.IsEmailVerified,
		nullString(user.VerifyEmail.Token), user.VerifyEmail.Expire).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return s.queryUser(ctx, op, query, userUID)
}

// GetUserByEmail возвращает пользователя по email (в нижнем регистре).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.queryUser(ctx, op, query, email)
}

// GetUserByGoogleID возвращает пользователя по идентификатору Google-аккаунта.
func (s *Storage) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	const op = "storage.GetUserByGoogleID"

	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return s.queryUser(ctx, op, query, googleID)
}

// GetUserByFacebookID возвращает пользователя по идентификатору Facebook-аккаунта.
func (s *Storage) GetUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error) {
	const op = "storage.GetUserByFacebookID"

	query := `SELECT ` + userColumns + ` FROM users WHERE facebook_id = $1`
	return s.queryUser(ctx, op, query, facebookID)
}

// GetUserByStripeCustomerID возвращает пользователя по идентификатору клиента
// платежного шлюза.
func (s *Storage) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByStripeCustomerID"

	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`
	return s.queryUser(ctx, op, query, customerID)
}

// GetUserByVerifyEmailToken возвращает пользователя по выданному токену
// подтверждения почты. Срок действия токена проверяет вызывающий код.
func (s *Storage) GetUserByVerifyEmailToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByVerifyEmailToken"

	query := `SELECT ` + userColumns + ` FROM users WHERE verify_email_token = $1`
	return s.queryUser(ctx, op, query, token)
}

// GetUserByResetPasswordToken возвращает пользователя по выданному токену
// сброса пароля.
func (s *Storage) GetUserByResetPasswordToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByResetPasswordToken"

	query := `SELECT ` + userColumns + ` FROM users WHERE reset_password_token = $1`
	return s.queryUser(ctx, op, query, token)
}

// UpdateStripeCustomerID сохраняет идентификатор клиента шлюза на записи пользователя.
func (s *Storage) UpdateStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.UpdateStripeCustomerID"

	query := `UPDATE users
		      SET stripe_customer_id = $1, updated_at = now()
		      WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, customerID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSubscription перезаписывает снимок подписки пользователя целиком.
func (s *Storage) UpdateSubscription(ctx context.Context, userUID string, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"

	query := `UPDATE users
		      SET subscription_plan = $1,
			      subscription_status = $2,
			      stripe_customer_id = $3,
			      stripe_subscription_id = $4,
			      updated_at = now()
		      WHERE uid = $5`
	if _, err := s.DB.ExecContext(ctx, query,
		nullString(sub.Plan), nullString(sub.Status),
		nullString(sub.StripeCustomerID), nullString(sub.StripeSubscriptionID),
		userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetVerifyEmailToken выставляет пару токен+срок для подтверждения почты.
func (s *Storage) SetVerifyEmailToken(ctx context.Context, userUID, token string, expire time.Time) error {
	const op = "storage.SetVerifyEmailToken"

	query := `UPDATE users
		      SET verify_email_token = $1, verify_email_expire = $2, updated_at = now()
		      WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, token, expire, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkEmailVerified помечает почту подтвержденной и очищает пару токена.
func (s *Storage) MarkEmailVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkEmailVerified"

	query := `UPDATE users
		      SET is_email_verified = true,
			      verify_email_token = NULL, verify_email_expire = NULL,
			      updated_at = now()
		      WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetResetPasswordToken выставляет пару токен+срок для сброса пароля.
func (s *Storage) SetResetPasswordToken(ctx context.Context, userUID, token string, expire time.Time) error {
	const op = "storage.SetResetPasswordToken"

	query := `UPDATE users
		      SET reset_password_token = $1, reset_password_expire = $2, updated_at = now()
		      WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, token, expire, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePassword сохраняет новый хэш пароля и очищает пару токена сброса.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"

	query := `UPDATE users
		      SET password_hash = $1,
			      reset_password_token = NULL, reset_password_expire = NULL,
			      updated_at = now()
		      WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, passwordHash, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserProfile перезаписывает имя, почту и хэш пароля пользователя.
func (s *Storage) UpdateUserProfile(ctx context.Context, userUID, name, email, passwordHash string) error {
	const op = "storage.UpdateUserProfile"

	query := `UPDATE users
		      SET name = $1, email = $2, password_hash = $3, updated_at = now()
		      WHERE uid = $4`
	res, err := s.DB.ExecContext(ctx, query, name, email, nullString(passwordHash), userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// LinkSocialAccount привязывает внешний аккаунт к существующему пользователю.
// Имя и аватар заполняются только если были пустыми, почта считается
// подтвержденной провайдером.
func (s *Storage) LinkSocialAccount(ctx context.Context, userUID, provider, providerUID, name, avatar string) error {
	const op = "storage.LinkSocialAccount"

	var column string
	switch provider {
	case "google":
		column = "google_id"
	case "facebook":
		column = "facebook_id"
	default:
		return fmt.Errorf("%s: unknown provider %q", op, provider)
	}

	query := `UPDATE users
		      SET ` + column + ` = $1,
			      name = CASE WHEN name = '' THEN $2 ELSE name END,
			      avatar = COALESCE(avatar, NULLIF($3, '')),
			      is_email_verified = true,
			      updated_at = now()
		      WHERE uid = $4`
	if _, err := s.DB.ExecContext(ctx, query, providerUID, name, avatar, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser удаляет учетную запись пользователя.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (s *Storage) queryUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, query, arg)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		passwordHash, avatar, googleID, facebookID         sql.NullString
		verifyToken, resetToken                            sql.NullString
		verifyExpire, resetExpire                          sql.NullTime
		plan, status, stripeCustomerID, stripeSubscription sql.NullString
	)
	if err := row.Scan(&u.UID, &u.Name, &u.Email, &passwordHash, &avatar,
		&googleID, &facebookID, &u.IsEmailVerified,
		&verifyToken, &verifyExpire, &resetToken, &resetExpire,
		&plan, &status, &stripeCustomerID, &stripeSubscription,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	u.PasswordHash = passwordHash.String
	u.Avatar = avatar.String
	u.GoogleID = googleID.String
	u.FacebookID = facebookID.String
	u.VerifyEmail.Token = verifyToken.String
	if verifyExpire.Valid {
		u.VerifyEmail.Expire = &verifyExpire.Time
	}
	u.ResetPassword.Token = resetToken.String
	if resetExpire.Valid {
		u.ResetPassword.Expire = &resetExpire.Time
	}
	u.Subscription = models.Subscription{
		Plan:                 plan.String,
		Status:               status.String,
		StripeCustomerID:     stripeCustomerID.String,
		StripeSubscriptionID: stripeSubscription.String,
	}
	return u, nil
}
