package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line carries the inputs the pricing computation needs from one order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Summary is the full pricing breakdown for an order. Total is the only field
// persisted; the rest feed the cart read model.
type Summary struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// Compute derives the order total from its current lines and rules:
//
//	subtotal       = Σ unit price × quantity
//	discountAmount = subtotal × discount% / 100
//	taxableBase    = subtotal − discountAmount
//	taxAmount      = taxableBase × tax% / 100
//	total          = taxableBase + taxAmount
//
// A nil discount or tax contributes zero. All arithmetic is fixed-point
// decimal; monetary components are rounded to 2 decimal places. Compute is a
// pure function of its inputs, so recomputation without an intervening
// mutation always yields the same Summary.
func Compute(lines []Line, discount *Discount, tax *Tax) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	discountAmount := decimal.Zero
	if discount != nil {
		discountAmount = subtotal.Mul(discount.Percentage).Div(hundred).Round(2)
	}

	base := subtotal.Sub(discountAmount)
	if base.IsNegative() {
		base = decimal.Zero
	}

	taxAmount := decimal.Zero
	if tax != nil {
		taxAmount = base.Mul(tax.Percentage).Div(hundred).Round(2)
	}

	return Summary{
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discountAmount,
		TaxableBase:    base.Round(2),
		TaxAmount:      taxAmount,
		Total:          base.Add(taxAmount).Round(2),
	}
}
