package money

import "github.com/shopspring/decimal"

func init() {
	// Monetary fields are plain JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)
)

// Round2 rounds a monetary amount half-up to two decimal places. Intermediate
// pricing math keeps full precision; rounding happens once, at composition or
// presentation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
