package pricing

import "github.com/shopspring/decimal"

var (
	shippingTierHigh = decimal.NewFromInt(2000)
	shippingTierLow  = decimal.NewFromInt(500)

	shippingFeeHigh = decimal.NewFromInt(200)
	shippingFeeMid  = decimal.NewFromInt(100)
	shippingFeeLow  = decimal.NewFromInt(50)
)

// ShippingCost maps a subtotal to its flat shipping fee. Tier boundaries are
// strict: a subtotal of exactly 500 ships for 50, exactly 2000 for 100.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThan(shippingTierHigh):
		return shippingFeeHigh
	case subtotal.GreaterThan(shippingTierLow):
		return shippingFeeMid
	default:
		return shippingFeeLow
	}
}
