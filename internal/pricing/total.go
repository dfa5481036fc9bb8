package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/partsden/storefront/internal/money"
)

// Totals is the composed monetary breakdown of an order, each field rounded to
// two decimal places.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// Compose combines subtotal, shipping, tax and coupon discount into a grand
// total. The grand total is clamped at zero; the coupon validator already caps
// the discount at the subtotal, so the clamp is normally unreachable. Rounding
// happens here, once.
func Compose(subtotal, shipping, tax, discount decimal.Decimal) Totals {
	grand := subtotal.Add(shipping).Add(tax).Sub(discount)
	return Totals{
		Subtotal:       money.Round2(subtotal),
		ShippingCost:   money.Round2(shipping),
		TaxAmount:      money.Round2(tax),
		DiscountAmount: money.Round2(discount),
		GrandTotal:     money.Round2(money.ClampNonNegative(grand)),
	}
}
