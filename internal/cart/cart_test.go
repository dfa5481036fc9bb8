package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/partsden/storefront/internal/cart"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineItem_DiscountedUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		item     cart.LineItem
		expected string
	}{
		{
			name:     "no_discount",
			item:     cart.LineItem{UnitPrice: dec("49.99"), DiscountPercent: dec("0"), Quantity: 1},
			expected: "49.99",
		},
		{
			name:     "ten_percent_off",
			item:     cart.LineItem{UnitPrice: dec("100"), DiscountPercent: dec("10"), Quantity: 1},
			expected: "90",
		},
		{
			name:     "full_discount",
			item:     cart.LineItem{UnitPrice: dec("25"), DiscountPercent: dec("100"), Quantity: 1},
			expected: "0",
		},
		{
			name:     "fractional_discount",
			item:     cart.LineItem{UnitPrice: dec("19.99"), DiscountPercent: dec("12.5"), Quantity: 1},
			expected: "17.491250",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.item.DiscountedUnitPrice()
			assert.True(t, dec(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
			assert.True(t, got.LessThanOrEqual(tt.item.UnitPrice), "discounted price must never exceed unit price")
			assert.False(t, got.IsNegative(), "discounted price must never be negative")
		})
	}
}

func TestSubtotal(t *testing.T) {
	items := []cart.LineItem{
		{ProductID: "brake-pads", UnitPrice: dec("120"), DiscountPercent: dec("0"), Quantity: 2},
		{ProductID: "oil-filter", UnitPrice: dec("30"), DiscountPercent: dec("10"), Quantity: 3},
		{ProductID: "wiper-blade", UnitPrice: dec("15.50"), DiscountPercent: dec("50"), Quantity: 4},
	}

	// 2*120 + 3*27 + 4*7.75 = 240 + 81 + 31 = 352
	assert.True(t, dec("352").Equal(cart.Subtotal(items)))
}

func TestSubtotal_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(cart.Subtotal(nil)))
}

func TestSubtotal_MatchesSumOfLineTotals(t *testing.T) {
	items := []cart.LineItem{
		{ProductID: "a", UnitPrice: dec("10.10"), DiscountPercent: dec("33"), Quantity: 7},
		{ProductID: "b", UnitPrice: dec("0.01"), DiscountPercent: dec("0"), Quantity: 99},
		{ProductID: "c", UnitPrice: dec("999.99"), DiscountPercent: dec("1"), Quantity: 1},
	}

	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.DiscountedUnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	assert.True(t, sum.Equal(cart.Subtotal(items)))
}

func TestValidate(t *testing.T) {
	valid := cart.LineItem{ProductID: "p1", UnitPrice: dec("10"), DiscountPercent: dec("5"), Quantity: 1}

	tests := []struct {
		name    string
		mutate  func(li cart.LineItem) cart.LineItem
		wantErr bool
	}{
		{"valid", func(li cart.LineItem) cart.LineItem { return li }, false},
		{"missing_product_id", func(li cart.LineItem) cart.LineItem { li.ProductID = ""; return li }, true},
		{"zero_quantity", func(li cart.LineItem) cart.LineItem { li.Quantity = 0; return li }, true},
		{"negative_quantity", func(li cart.LineItem) cart.LineItem { li.Quantity = -2; return li }, true},
		{"negative_price", func(li cart.LineItem) cart.LineItem { li.UnitPrice = dec("-1"); return li }, true},
		{"discount_above_hundred", func(li cart.LineItem) cart.LineItem { li.DiscountPercent = dec("101"); return li }, true},
		{"negative_discount", func(li cart.LineItem) cart.LineItem { li.DiscountPercent = dec("-5"); return li }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cart.Validate([]cart.LineItem{tt.mutate(valid)})
			if tt.wantErr {
				assert.ErrorIs(t, err, cart.ErrInvalidItem)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
