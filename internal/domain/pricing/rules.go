package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownCode is returned when a discount code does not match any rule.
	// Callers treat it as a reportable failure, not a server fault: the order
	// keeps its previous discount and total.
	ErrUnknownCode = errors.New("unknown discount code")

	// ErrTaxNotFound is returned when a tax rule id does not exist.
	ErrTaxNotFound = errors.New("tax rule not found")
)

// Discount is a percentage reduction applied to the order subtotal,
// looked up by its unique code.
type Discount struct {
	ID         string
	Code       string
	Percentage decimal.Decimal
}

// Tax is a percentage charge applied to the discounted subtotal.
type Tax struct {
	ID         string
	Name       string
	Percentage decimal.Decimal
}

// DiscountRepository provides lookup of discount rules.
type DiscountRepository interface {
	// FindByCode matches codes case-insensitively and returns ErrUnknownCode
	// on a miss.
	FindByCode(ctx context.Context, code string) (*Discount, error)
}

// TaxRepository provides lookup of tax rules.
type TaxRepository interface {
	List(ctx context.Context) ([]Tax, error)
	// GetByID returns ErrTaxNotFound on a miss.
	GetByID(ctx context.Context, id string) (*Tax, error)
}
