package coupon

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

var (
	ErrNotFound       = errors.New("coupon not found")
	ErrExpired        = errors.New("coupon has expired")
	ErrExhausted      = errors.New("coupon usage limit reached")
	ErrMinOrderNotMet = errors.New("order subtotal below coupon minimum")
)

// IsDomainError reports whether err is one of the coupon validation
// sentinels, as opposed to an infrastructure failure. Domain failures are
// recoverable at checkout: the order proceeds without a discount.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrExhausted) ||
		errors.Is(err, ErrMinOrderNotMet)
}

// Coupon is a discount code created by the catalog admin. Codes are unique
// case-insensitively. UsageCount is the only field this engine mutates, and
// only through the guarded increment at order commit.
type Coupon struct {
	ID            int64            `json:"id"`
	Code          string           `json:"code"`
	DiscountType  DiscountType     `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	UsageLimit    *int             `json:"usage_limit,omitempty"`
	UsageCount    int              `json:"usage_count"`
	MinOrderValue *decimal.Decimal `json:"min_order_value,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Expired reports whether the coupon's expiry has passed at the given instant.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Exhausted reports whether a set usage limit has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}
