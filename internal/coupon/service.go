package coupon

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/partsden/storefront/internal/money"
)

// Service prices coupons against a cart subtotal. Preview never mutates
// anything; the usage increment happens only at order commit, through
// Repository.IncrementUsage on the order-creation transaction.
type Service interface {
	Preview(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// NewServiceWithClock is used by tests that need a fixed notion of "now".
func NewServiceWithClock(repo Repository, now func() time.Time) Service {
	return &service{repo: repo, now: now}
}

// Preview validates the coupon against the subtotal and its own constraints
// and returns the discount amount. Safe to call repeatedly while the shopper
// edits the cart.
func (s *service) Preview(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	c, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}

	if c.Expired(s.now()) {
		log.Debug().Str("code", c.Code).Time("expires_at", *c.ExpiresAt).Msg("service: coupon expired")
		return decimal.Zero, ErrExpired
	}

	if c.Exhausted() {
		return decimal.Zero, ErrExhausted
	}

	if c.MinOrderValue != nil && subtotal.LessThan(*c.MinOrderValue) {
		return decimal.Zero, ErrMinOrderNotMet
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(money.Hundred)
	default:
		discount = c.DiscountValue
	}

	// A discount can never exceed the subtotal; this keeps the grand total
	// non-negative downstream.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return discount, nil
}
