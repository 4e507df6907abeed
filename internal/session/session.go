// Package session binds opaque shopping-session tokens to order identities.
// A token maps 1:1 to an order id for its lifetime; the first cart mutation
// in a session creates the binding.
package session

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNoBinding is returned when a session token has no bound order.
var ErrNoBinding = errors.New("session has no bound order")

// Store persists session-token → order-id bindings.
type Store interface {
	// Lookup resolves the order id bound to token, refreshing its lifetime.
	// Returns ErrNoBinding when the token is unknown or expired.
	Lookup(ctx context.Context, token string) (orderID string, err error)

	// Bind associates token with orderID, replacing any previous binding.
	Bind(ctx context.Context, token, orderID string) error

	// Clear removes the binding for token. Clearing an unknown token is a no-op.
	Clear(ctx context.Context, token string) error
}
