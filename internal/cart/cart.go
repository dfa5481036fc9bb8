package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/partsden/storefront/internal/money"
)

var ErrInvalidItem = errors.New("invalid line item")

// LineItem is a single product entry in a cart. UnitPrice is the catalog price
// at the time the cart was assembled; DiscountPercent is the per-item catalog
// discount, 0..100.
type LineItem struct {
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"image_url,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Quantity        int             `json:"quantity"`
}

// DiscountedUnitPrice applies the per-item discount, clamped so the result is
// never negative and never exceeds the unit price.
func (li LineItem) DiscountedUnitPrice() decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(li.DiscountPercent.Div(money.Hundred))
	return money.ClampNonNegative(li.UnitPrice.Mul(factor))
}

// LineTotal is the discounted unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.DiscountedUnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Subtotal reduces the cart to the sum of discounted line totals, at full
// precision.
func Subtotal(items []LineItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, li := range items {
		subtotal = subtotal.Add(li.LineTotal())
	}
	return subtotal
}

// Validate checks every line item for the invariants the pricing pipeline
// relies on.
func Validate(items []LineItem) error {
	for i, li := range items {
		if li.ProductID == "" {
			return fmt.Errorf("%w: item %d has no product id", ErrInvalidItem, i)
		}
		if li.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1, got %d", ErrInvalidItem, i, li.Quantity)
		}
		if li.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d unit price cannot be negative", ErrInvalidItem, i)
		}
		if li.DiscountPercent.IsNegative() || li.DiscountPercent.GreaterThan(money.Hundred) {
			return fmt.Errorf("%w: item %d discount percent must be within 0..100", ErrInvalidItem, i)
		}
	}
	return nil
}
