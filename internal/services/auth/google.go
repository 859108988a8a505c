package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier проверяет Google ID-токены через библиотеку idtoken.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier создает проверку токенов для указанного OAuth client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// Verify валидирует подпись и аудиторию ID-токена и возвращает профиль.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*SocialProfile, error) {
	const op = "auth.GoogleVerifier.Verify"

	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	if payload.Subject == "" || email == "" {
		return nil, fmt.Errorf("%s: token payload is missing subject or email", op)
	}

	return &SocialProfile{
		ProviderUID: payload.Subject,
		Email:       email,
		Name:        name,
		Avatar:      picture,
	}, nil
}
