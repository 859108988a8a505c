package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FacebookVerifier проверяет access-токены через Graph API.
// Запросы подписываются appsecret_proof, чтобы токен нельзя было
// использовать с чужим приложением.
type FacebookVerifier struct {
	appSecret  string
	apiURL     string
	httpClient *http.Client
}

// NewFacebookVerifier создает проверку токенов Facebook.
func NewFacebookVerifier(appSecret string) *FacebookVerifier {
	return &FacebookVerifier{
		appSecret: appSecret,
		apiURL:    "https://graph.facebook.com/v19.0",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type facebookProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

type facebookError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Verify запрашивает профиль владельца токена у Graph API.
func (v *FacebookVerifier) Verify(ctx context.Context, token string) (*SocialProfile, error) {
	const op = "auth.FacebookVerifier.Verify"

	query := url.Values{}
	query.Set("fields", "id,name,email,picture")
	query.Set("access_token", token)
	query.Set("appsecret_proof", v.appSecretProof(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.apiURL+"/me?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr facebookError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%s: graph api: %s", op, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%s: graph api returned status %d", op, resp.StatusCode)
	}

	var profile facebookProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("%s: profile is missing id or email", op)
	}

	return &SocialProfile{
		ProviderUID: profile.ID,
		Email:       profile.Email,
		Name:        profile.Name,
		Avatar:      profile.Picture.Data.URL,
	}, nil
}

func (v *FacebookVerifier) appSecretProof(token string) string {
	mac := hmac.New(sha256.New, []byte(v.appSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
