package pricing

import "github.com/shopspring/decimal"

// DefaultTaxRate is the flat sales-tax rate the configuration layer falls
// back to when TAX_RATE is unset.
var DefaultTaxRate = decimal.NewFromFloat(0.07)

// TaxCalculator applies a flat sales-tax rate to a subtotal.
type TaxCalculator struct {
	rate decimal.Decimal
}

// NewTaxCalculator uses the rate exactly as configured. Defaulting is the
// config layer's job; a rate of zero is a valid no-sales-tax jurisdiction,
// not an unset value.
func NewTaxCalculator(rate decimal.Decimal) TaxCalculator {
	return TaxCalculator{rate: rate}
}

// Tax returns subtotal × rate at full precision.
func (t TaxCalculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(t.rate)
}
