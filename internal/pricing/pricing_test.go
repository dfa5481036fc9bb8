package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/partsden/storefront/internal/pricing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestShippingCost_Boundaries(t *testing.T) {
	tests := []struct {
		subtotal string
		expected string
	}{
		{"0", "50"},
		{"499.99", "50"},
		{"500", "50"},
		{"500.01", "100"},
		{"1000", "100"},
		{"2000", "100"},
		{"2000.01", "200"},
		{"2500", "200"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got := pricing.ShippingCost(dec(tt.subtotal))
			assert.True(t, dec(tt.expected).Equal(got), "shippingCost(%s) = %s, want %s", tt.subtotal, got, tt.expected)
		})
	}
}

func TestTaxCalculator(t *testing.T) {
	calc := pricing.NewTaxCalculator(dec("0.07"))

	assert.True(t, dec("70").Equal(calc.Tax(dec("1000"))))
	assert.True(t, dec("175").Equal(calc.Tax(dec("2500"))))
	assert.True(t, decimal.Zero.Equal(calc.Tax(decimal.Zero)))
}

func TestTaxCalculator_ZeroRateChargesNoTax(t *testing.T) {
	// A no-sales-tax jurisdiction configures rate 0; the calculator must not
	// substitute the default.
	calc := pricing.NewTaxCalculator(decimal.Zero)
	assert.True(t, calc.Tax(dec("1000")).IsZero(), "configured rate 0 must yield zero tax, got %s", calc.Tax(dec("1000")))
}

func TestCompose_WorkedExamples(t *testing.T) {
	tax := pricing.NewTaxCalculator(dec("0.07"))

	tests := []struct {
		name     string
		subtotal string
		discount string
		want     string
	}{
		// subtotal 1000, no coupon: shipping 100, tax 70 -> 1170.00
		{"mid_tier_no_coupon", "1000", "0", "1170"},
		// subtotal 2500, no coupon: shipping 200, tax 175 -> 2875.00
		{"high_tier_no_coupon", "2500", "0", "2875"},
		// SAVE10 on 1000: discount 100, shipping 100, tax 70 -> 1070.00
		{"mid_tier_ten_percent_coupon", "1000", "100", "1070"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtotal := dec(tt.subtotal)
			totals := pricing.Compose(subtotal, pricing.ShippingCost(subtotal), tax.Tax(subtotal), dec(tt.discount))
			assert.True(t, dec(tt.want).Equal(totals.GrandTotal), "grand total = %s, want %s", totals.GrandTotal, tt.want)
		})
	}
}

func TestCompose_Fields(t *testing.T) {
	totals := pricing.Compose(dec("1000"), dec("100"), dec("70"), dec("100"))

	assert.True(t, dec("1000").Equal(totals.Subtotal))
	assert.True(t, dec("100").Equal(totals.ShippingCost))
	assert.True(t, dec("70").Equal(totals.TaxAmount))
	assert.True(t, dec("100").Equal(totals.DiscountAmount))
	assert.True(t, dec("1070").Equal(totals.GrandTotal))
}

func TestCompose_RoundsOnceAtComposition(t *testing.T) {
	// 33.333 + 50 + 2.33331 - 0.005 = 85.66131 -> 85.66
	totals := pricing.Compose(dec("33.333"), dec("50"), dec("2.33331"), dec("0.005"))
	assert.True(t, dec("85.66").Equal(totals.GrandTotal), "got %s", totals.GrandTotal)
}

func TestCompose_ClampsGrandTotalAtZero(t *testing.T) {
	// A discount above subtotal+fees is unreachable through the coupon
	// validator, but the composer still refuses a negative total.
	totals := pricing.Compose(dec("10"), dec("0"), dec("0"), dec("50"))
	assert.True(t, totals.GrandTotal.IsZero())
}
