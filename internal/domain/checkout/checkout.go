// Package checkout turns a computed order total into a payment intent at an
// external gateway. It validates amount bounds before calling out and never
// mutates order state: checkout failures stay retryable.
package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyOrder       = errors.New("order has no lines")
	ErrAmountBelowMin   = errors.New("amount below gateway minimum")
	ErrAmountAboveMax   = errors.New("amount above gateway maximum")
	ErrCurrencyMismatch = errors.New("order lines use more than one currency")
	ErrFractionalAmount = errors.New("total does not convert exactly to minor units")
)

// GatewayError wraps a failure reported by the payment gateway so callers can
// distinguish it from local validation errors.
type GatewayError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway: %s", e.Provider, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Intent is the opaque payment handle returned by a gateway.
type Intent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// Gateway creates payment intents at an external payment processor.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string) (*Intent, error)
}

// Limits bound the amounts the gateway accepts, in minor units.
type Limits struct {
	MinAmountMinor int64
	MaxAmountMinor int64
}

// DefaultLimits mirror Stripe's documented payment-intent bounds.
var DefaultLimits = Limits{
	MinAmountMinor: 50,
	MaxAmountMinor: 99_999_999,
}
