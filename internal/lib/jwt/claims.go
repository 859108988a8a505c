// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки токенов двух видов:
// сессионных (uid + email, длинный TTL) и почтовых (подтверждение адреса и
// сброс пароля, короткий TTL). MakerImpl — конкретная реализация с
// использованием секретного ключа.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в сессионном JWT.
type CustomClaims struct {
	UserUID              string `json:"id"`    // Идентификатор пользователя
	Email                string `json:"email"` // Электронная почта
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает сессионный токен с uid и email пользователя
	GenerateToken(userUID, email string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен
	ParseToken(tokenStr string) (*CustomClaims, error)
	// GenerateEmailToken создает короткоживущий токен для писем
	// (подтверждение почты, сброс пароля)
	GenerateEmailToken(email string) (string, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов.
type MakerImpl struct {
	secretKey     string        // Секретный ключ для подписи токенов.
	tokenTTL      time.Duration // Время жизни сессионного токена.
	emailTokenTTL time.Duration // Время жизни почтового токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl.
func NewJWTMaker(secretKey string, tokenTTL, emailTokenTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:     secretKey,
		tokenTTL:      tokenTTL,
		emailTokenTTL: emailTokenTTL,
	}
}
