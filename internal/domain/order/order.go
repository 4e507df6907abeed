package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smtdev/storefront/internal/domain/catalog"
	"github.com/smtdev/storefront/internal/domain/pricing"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// NewID mints an order id. Ids are opaque to clients; the session binding is
// the only way to reach an order.
func NewID() string {
	return uuid.NewString()
}

// LineNotFoundError indicates a removal targeted an item with no line in the order.
type LineNotFoundError struct {
	ItemID string
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("no line for item %s in order", e.ItemID)
}

// Line is one (item, quantity) entry in an order. The item snapshot carries
// the unit price the total is computed from.
type Line struct {
	Item     catalog.Item
	Quantity int
}

// Order is the cart aggregate bound to a shopping session. Total is always
// derived from Lines, Discount, and Tax via pricing.Compute; it is persisted
// alongside every mutation and never set independently.
type Order struct {
	ID        string
	Lines     []Line
	Discount  *pricing.Discount
	Tax       *pricing.Tax
	Total     decimal.Decimal
	CreatedAt time.Time
}

// line returns a pointer to the line for itemID, or nil.
func (o *Order) line(itemID string) *Line {
	for i := range o.Lines {
		if o.Lines[i].Item.ID == itemID {
			return &o.Lines[i]
		}
	}
	return nil
}

// pricingLines converts the order's lines into pricing inputs.
func (o *Order) pricingLines() []pricing.Line {
	out := make([]pricing.Line, len(o.Lines))
	for i, l := range o.Lines {
		out[i] = pricing.Line{UnitPrice: l.Item.Price, Quantity: l.Quantity}
	}
	return out
}

// Summary recomputes the full pricing breakdown from current state.
func (o *Order) Summary() pricing.Summary {
	return pricing.Compute(o.pricingLines(), o.Discount, o.Tax)
}

// recompute refreshes the derived total.
func (o *Order) recompute() {
	o.Total = o.Summary().Total
}

// Repository defines persistence for orders and their lines. Save writes the
// order row and replaces its lines in a single transaction so the recomputed
// total always lands together with the mutation that triggered it.
type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	Save(ctx context.Context, o *Order) error
}
