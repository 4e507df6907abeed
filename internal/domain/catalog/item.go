package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// ItemNotFoundError indicates a specific item id missing from the catalog.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ItemID)
}

// Is makes the typed error match ErrNotFound in errors.Is chains.
func (e *ItemNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Item is a purchasable catalog entry. Items are immutable through the
// storefront API; they are created and updated only by the seed tooling.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    string
}

// Repository defines read operations for the item catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
}
