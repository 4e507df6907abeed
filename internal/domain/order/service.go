package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/smtdev/storefront/internal/domain/catalog"
	"github.com/smtdev/storefront/internal/domain/pricing"
)

// Service implements the cart command set: add item, remove line, clear,
// apply/remove discount, apply tax. Every command mutates the aggregate in
// memory, recomputes the total, and persists the result in one Save call;
// a failed lookup returns before anything is written, so persisted state
// stays untouched on error.
type Service struct {
	items     catalog.Repository
	discounts pricing.DiscountRepository
	taxes     pricing.TaxRepository
	orders    Repository
	now       func() time.Time
}

// NewService creates a cart Service with the required domain dependencies.
func NewService(
	items catalog.Repository,
	discounts pricing.DiscountRepository,
	taxes pricing.TaxRepository,
	orders Repository,
) *Service {
	return &Service{
		items:     items,
		discounts: discounts,
		taxes:     taxes,
		orders:    orders,
		now:       time.Now,
	}
}

// Get loads the order aggregate. Returns ErrNotFound when the id has no row.
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.Get(ctx, orderID)
}

// AddItem adds one unit of itemID to the order, creating the order on first
// use. An existing line is incremented; otherwise a new line starts at
// quantity 1.
func (s *Service) AddItem(ctx context.Context, orderID, itemID string) (*Order, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &catalog.ItemNotFoundError{ItemID: itemID}
		}
		return nil, errors.Wrapf(err, "get item %s", itemID)
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrapf(err, "get order %s", orderID)
		}
		// First add in this session: create the aggregate lazily.
		o = &Order{ID: orderID, CreatedAt: s.now()}
	}

	if l := o.line(itemID); l != nil {
		l.Quantity++
	} else {
		o.Lines = append(o.Lines, Line{Item: *item, Quantity: 1})
	}

	return s.save(ctx, o)
}

// RemoveItem deletes the line for itemID. Returns ErrNotFound when the order
// does not exist and a LineNotFoundError when the order has no such line.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.line(itemID) == nil {
		return nil, &LineNotFoundError{ItemID: itemID}
	}

	lines := o.Lines[:0]
	for _, l := range o.Lines {
		if l.Item.ID != itemID {
			lines = append(lines, l)
		}
	}
	o.Lines = lines

	return s.save(ctx, o)
}

// Clear removes every line from the order. Discount and tax references stay;
// with a zero base they contribute nothing, so the total recomputes to zero.
func (s *Service) Clear(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.Lines = nil

	return s.save(ctx, o)
}

// ApplyDiscountCode sets the order's discount to the rule matching code.
// An unknown code returns pricing.ErrUnknownCode with the order untouched.
func (s *Service) ApplyDiscountCode(ctx context.Context, orderID, code string) (*Order, error) {
	discount, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownCode) {
			return nil, pricing.ErrUnknownCode
		}
		return nil, errors.Wrapf(err, "find discount %q", code)
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.Discount = discount

	return s.save(ctx, o)
}

// RemoveDiscount clears the order's discount reference.
func (s *Service) RemoveDiscount(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.Discount = nil

	return s.save(ctx, o)
}

// ApplyTax sets the order's tax to the rule with taxID, or clears it when
// taxID is nil. An unknown id returns pricing.ErrTaxNotFound.
func (s *Service) ApplyTax(ctx context.Context, orderID string, taxID *string) (*Order, error) {
	var tax *pricing.Tax
	if taxID != nil {
		t, err := s.taxes.GetByID(ctx, *taxID)
		if err != nil {
			if errors.Is(err, pricing.ErrTaxNotFound) {
				return nil, pricing.ErrTaxNotFound
			}
			return nil, errors.Wrapf(err, "get tax %s", *taxID)
		}
		tax = t
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.Tax = tax

	return s.save(ctx, o)
}

// save recomputes the derived total and persists the aggregate atomically.
func (s *Service) save(ctx context.Context, o *Order) (*Order, error) {
	o.recompute()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, errors.Wrapf(err, "save order %s", o.ID)
	}
	return o, nil
}
