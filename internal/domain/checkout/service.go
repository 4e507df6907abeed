package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smtdev/storefront/internal/domain/order"
)

// Service validates an order's total against the gateway's bounds and creates
// a payment intent for it.
type Service struct {
	orders  order.Repository
	gateway Gateway
	limits  Limits
}

// NewService creates a checkout Service. Each zero bound falls back to its
// DefaultLimits value independently, so overriding one keeps the other.
func NewService(orders order.Repository, gateway Gateway, limits Limits) *Service {
	if limits.MinAmountMinor == 0 {
		limits.MinAmountMinor = DefaultLimits.MinAmountMinor
	}
	if limits.MaxAmountMinor == 0 {
		limits.MaxAmountMinor = DefaultLimits.MaxAmountMinor
	}
	return &Service{
		orders:  orders,
		gateway: gateway,
		limits:  limits,
	}
}

// CreateIntent loads the order, validates its total, and opens a payment
// intent at the gateway. The order itself is read-only here: a gateway
// failure surfaces as *GatewayError without touching cart state.
func (s *Service) CreateIntent(ctx context.Context, orderID string) (*Intent, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if len(o.Lines) == 0 {
		return nil, ErrEmptyOrder
	}

	currency, err := orderCurrency(o)
	if err != nil {
		return nil, err
	}

	amount, err := toMinorUnits(o.Total)
	if err != nil {
		return nil, err
	}

	if amount < s.limits.MinAmountMinor {
		return nil, errors.Wrapf(ErrAmountBelowMin, "amount %d < %d", amount, s.limits.MinAmountMinor)
	}
	if amount > s.limits.MaxAmountMinor {
		return nil, errors.Wrapf(ErrAmountAboveMax, "amount %d > %d", amount, s.limits.MaxAmountMinor)
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, amount, currency)
	if err != nil {
		var ge *GatewayError
		if errors.As(err, &ge) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create payment intent")
	}

	return intent, nil
}

// orderCurrency returns the single currency shared by every line.
func orderCurrency(o *order.Order) (string, error) {
	currency := o.Lines[0].Item.Currency
	for _, l := range o.Lines[1:] {
		if l.Item.Currency != currency {
			return "", ErrCurrencyMismatch
		}
	}
	return currency, nil
}

// toMinorUnits converts a 2-decimal total to integer minor units, rejecting
// values that do not convert exactly.
func toMinorUnits(total decimal.Decimal) (int64, error) {
	minor := total.Shift(2)
	if !minor.IsInteger() {
		return 0, ErrFractionalAmount
	}
	return minor.IntPart(), nil
}
