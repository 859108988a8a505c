package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client клиент API платежного шлюза.
// Конструируется один раз при старте приложения и передается сервисам
// как зависимость, что позволяет подменять его фейком в тестах.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент шлюза с секретным ключом.
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     "https://api.stripe.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CheckoutSessionParams параметры создания checkout-сессии подписки.
type CheckoutSessionParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// apiError форма ошибки в ответе шлюза.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCustomer регистрирует клиента в шлюзе и возвращает его идентификатор.
func (c *Client) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	const op = "billing.CreateCustomer"

	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/customers", form, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.ID, nil
}

// CreateCheckoutSession создает checkout-сессию в режиме подписки и
// возвращает URL размещенной у шлюза страницы оплаты.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (string, error) {
	const op = "billing.CreateCheckoutSession"

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer", params.CustomerID)
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	var resp struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.postForm(ctx, "/checkout/sessions", form, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.URL, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gateway returned %s: %s", resp.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("gateway returned unexpected status: %s", resp.Status)
	}
	return json.Unmarshal(body, result)
}
