package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smtdev/storefront/internal/domain/checkout"
)

func TestCreatePaymentIntent_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1890", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_abc","client_secret":"pi_abc_secret","amount":1890,"currency":"usd"}`))
	}))
	defer srv.Close()

	c := New("sk_test_123", WithBaseURL(srv.URL))

	intent, err := c.CreatePaymentIntent(context.Background(), 1890, "USD")

	require.NoError(t, err)
	assert.Equal(t, "pi_abc", intent.ID)
	assert.Equal(t, "pi_abc_secret", intent.ClientSecret)
	assert.Equal(t, int64(1890), intent.AmountMinor)
	assert.Equal(t, "USD", intent.Currency)
}

func TestCreatePaymentIntent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	c := New("sk_test_123", WithBaseURL(srv.URL))

	_, err := c.CreatePaymentIntent(context.Background(), 1890, "USD")

	var ge *checkout.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "stripe", ge.Provider)
	assert.Contains(t, ge.Message, "declined")
}

func TestCreatePaymentIntent_MalformedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := New("sk_test_123", WithBaseURL(srv.URL))

	_, err := c.CreatePaymentIntent(context.Background(), 100, "USD")

	var ge *checkout.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Message, "502")
}

func TestCreatePaymentIntent_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // shut down before the call

	c := New("sk_test_123", WithBaseURL(srv.URL))

	_, err := c.CreatePaymentIntent(context.Background(), 100, "USD")

	var ge *checkout.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.NotNil(t, ge.Err)
}
