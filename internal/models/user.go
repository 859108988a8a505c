// Package models содержит доменные структуры приложения: пользователя с
// снимком состояния подписки, сущности каталога и вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import "time"

// Возможные значения плана подписки.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

// Возможные значения статуса подписки. Статус меняется только событиями
// платежного шлюза, приложение никогда не выставляет active само.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusCanceled = "canceled"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID             string     // Уникальный идентификатор пользователя
	Name            string     // Отображаемое имя
	Email           string     // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash    string     // Хэш пароля, пустой для чисто социальных аккаунтов
	Avatar          string     // URL аватара
	GoogleID        string     // Идентификатор Google-аккаунта, уникален если задан
	FacebookID      string     // Идентификатор Facebook-аккаунта, уникален если задан
	IsEmailVerified bool       // Подтверждена ли почта
	VerifyEmail     TokenPair  // Токен подтверждения почты
	ResetPassword   TokenPair  // Токен сброса пароля
	Subscription    Subscription
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TokenPair хранит одноразовый токен вместе со сроком действия.
// Поля всегда выставляются и очищаются вместе.
type TokenPair struct {
	Token  string
	Expire *time.Time
}

// IsSet сообщает, выдан ли токен.
func (p TokenPair) IsSet() bool {
	return p.Token != "" && p.Expire != nil
}

// IsValid проверяет, что сохранённый токен совпадает с переданным и не истёк.
func (p TokenPair) IsValid(token string, now time.Time) bool {
	return p.IsSet() && p.Token == token && now.Before(*p.Expire)
}

// Subscription снимок состояния подписки пользователя в платежном шлюзе.
// Пустые строки означают отсутствие плана/статуса.
type Subscription struct {
	Plan                 string `json:"plan"`
	Status               string `json:"status"`
	StripeCustomerID     string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string `json:"stripe_subscription_id,omitempty"`
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
