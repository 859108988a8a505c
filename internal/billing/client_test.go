package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient("sk_test_123")
	client.apiURL = srv.URL
	return client
}

func TestClient_CreateCustomer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "Test User", r.PostForm.Get("name"))
		assert.Equal(t, "uid-1", r.PostForm.Get("metadata[user_uid]"))

		_, _ = w.Write([]byte(`{"id": "cus_123"}`))
	})

	customerID, err := client.CreateCustomer(context.Background(),
		"user@example.com", "Test User", map[string]string{"user_uid": "uid-1"})
	require.NoError(t, err)
	assert.Equal(t, "cus_123", customerID)
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "cus_123", r.PostForm.Get("customer"))
		assert.Equal(t, "price_premium", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "https://zenshift.com/dashboard?success=true", r.PostForm.Get("success_url"))

		_, _ = w.Write([]byte(`{"id": "cs_1", "url": "https://checkout.example.com/cs_1"}`))
	})

	url, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		CustomerID: "cus_123",
		PriceID:    "price_premium",
		SuccessURL: "https://zenshift.com/dashboard?success=true",
		CancelURL:  "https://zenshift.com/dashboard?canceled=true",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_1", url)
}

func TestClient_GatewayError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "No such price: price_missing"}}`))
	})

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		CustomerID: "cus_123",
		PriceID:    "price_missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such price")
}
