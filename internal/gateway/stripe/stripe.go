// Package stripe implements the checkout.Gateway interface against the
// Stripe payment-intents REST API.
package stripe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/smtdev/storefront/internal/domain/checkout"
)

const defaultBaseURL = "https://api.stripe.com"

var _ checkout.Gateway = (*Client)(nil)

// Client calls the Stripe API with a bounded timeout. The zero value is not
// usable; construct it with New.
type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, used for tests and mock servers.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds each API call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Stripe client authenticated with the given secret key.
func New(secretKey string, opts ...Option) *Client {
	c := &Client{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// intentResponse is the subset of Stripe's payment-intent object we consume.
type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreatePaymentIntent opens a payment intent for the given amount in minor
// units. Gateway-side failures are returned as *checkout.GatewayError so the
// caller can distinguish them from local errors.
func (c *Client) CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string) (*checkout.Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinorUnits, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &checkout.GatewayError{Provider: "stripe", Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &checkout.GatewayError{Provider: "stripe", Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, gatewayError(resp.StatusCode, body)
	}

	var intent intentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, &checkout.GatewayError{Provider: "stripe", Message: "decode response", Err: err}
	}

	return &checkout.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountMinor:  intent.Amount,
		Currency:     strings.ToUpper(intent.Currency),
	}, nil
}

// gatewayError extracts Stripe's error message when the body parses, falling
// back to the HTTP status.
func gatewayError(status int, body []byte) *checkout.GatewayError {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return &checkout.GatewayError{Provider: "stripe", Message: er.Error.Message}
	}
	return &checkout.GatewayError{Provider: "stripe", Message: "unexpected status " + strconv.Itoa(status)}
}
