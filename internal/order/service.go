package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/partsden/storefront/internal/cart"
	"github.com/partsden/storefront/internal/coupon"
	"github.com/partsden/storefront/internal/pricing"
)

// CreateInput is the immutable checkout submission, assembled once by the
// handler and independent of any presentation state.
type CreateInput struct {
	Items           []cart.LineItem
	Billing         BillingDetails
	ShippingAddress string
	PaymentMethod   string
	CouponCode      string
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Order, error)
	Transition(ctx context.Context, orderID uuid.UUID, newStatus Status) error
	AttachShipping(ctx context.Context, orderID uuid.UUID, carrier, trackingNumber string, eta time.Time) error
}

type service struct {
	repo    Repository
	coupons coupon.Service
	tax     pricing.TaxCalculator
	cache   TrackingCache
}

func NewService(repo Repository, coupons coupon.Service, tax pricing.TaxCalculator, cache TrackingCache) Service {
	return &service{repo: repo, coupons: coupons, tax: tax, cache: cache}
}

// Create derives the order totals server-side from the submitted cart, prices
// the optional coupon, and persists the whole snapshot with status placed.
// A coupon that fails validation yields a zero discount and the order still
// goes through; coupon failures never block placement.
func (s *service) Create(ctx context.Context, input CreateInput) (*Order, error) {
	if len(input.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, ErrEmptyCart
	}

	if err := cart.Validate(input.Items); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := validateBilling(input.Billing); err != nil {
		return nil, err
	}

	if !PaymentMethodSupported(input.PaymentMethod) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, input.PaymentMethod)
	}

	subtotal := cart.Subtotal(input.Items)
	shipping := pricing.ShippingCost(subtotal)
	tax := s.tax.Tax(subtotal)

	discount := decimal.Zero
	couponCode := strings.TrimSpace(input.CouponCode)
	if couponCode != "" {
		var err error
		discount, err = s.coupons.Preview(ctx, couponCode, subtotal)
		if err != nil {
			if !coupon.IsDomainError(err) {
				return nil, fmt.Errorf("service: failed to price coupon: %w", err)
			}
			log.Warn().Err(err).Str("coupon_code", couponCode).Msg("service: coupon rejected, placing order without discount")
			discount = decimal.Zero
			couponCode = ""
		}
	}

	o, err := s.buildOrder(input, couponCode, subtotal, shipping, tax, discount)
	if err != nil {
		return nil, err
	}

	err = s.repo.Create(ctx, o)
	if errors.Is(err, coupon.ErrExhausted) || errors.Is(err, coupon.ErrNotFound) {
		// Lost the race for the coupon's last use (or the code was removed
		// between preview and commit). Reprice without it and place the order.
		log.Warn().Err(err).Str("coupon_code", couponCode).Msg("service: coupon commit failed, retrying order without coupon")
		o, err = s.buildOrder(input, "", subtotal, shipping, tax, decimal.Zero)
		if err != nil {
			return nil, err
		}
		err = s.repo.Create(ctx, o)
	}
	if err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Str("order_number", o.Number).
		Str("grand_total", o.GrandTotal.String()).
		Msg("service: order created")

	return o, nil
}

func (s *service) buildOrder(input CreateInput, couponCode string, subtotal, shipping, tax, discount decimal.Decimal) (*Order, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
	}

	totals := pricing.Compose(subtotal, shipping, tax, discount)

	return &Order{
		ID:            id,
		Number:        numberFromID(id),
		Status:        StatusPlaced,
		PaymentMethod: input.PaymentMethod,
		// Every method settles out-of-band; payment starts unverified for all
		// orders rather than branching the lifecycle per method.
		PaymentPendingVerification: true,
		Billing:                    input.Billing,
		ShippingAddress:            input.ShippingAddress,
		CouponCode:                 couponCode,
		Subtotal:                   totals.Subtotal,
		ShippingCost:               totals.ShippingCost,
		TaxAmount:                  totals.TaxAmount,
		DiscountAmount:             totals.DiscountAmount,
		GrandTotal:                 totals.GrandTotal,
		Items:                      SnapshotFromCart(input.Items),
	}, nil
}

// Transition advances the order to a strictly later fulfillment stage. It is
// the only mutator of status after creation.
func (s *service) Transition(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	if !newStatus.Known() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if !current.Status.CanTransitionTo(newStatus) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: rejected status transition")
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	s.invalidateView(ctx, current.Number)

	log.Info().
		Stringer("order_id", orderID).
		Stringer("old_status", current.Status).
		Stringer("new_status", newStatus).
		Msg("service: order status updated")
	return nil
}

// AttachShipping records carrier data supplied by fulfillment. Monetary fields
// and the item snapshot stay untouched.
func (s *service) AttachShipping(ctx context.Context, orderID uuid.UUID, carrier, trackingNumber string, eta time.Time) error {
	if carrier == "" || trackingNumber == "" {
		return fmt.Errorf("%w: carrier and tracking number are required", ErrValidation)
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("service: failed to get order for shipping update: %w", err)
	}

	// An omitted estimate stays NULL; the tracking view falls back to its
	// createdAt-based default instead of showing the zero time.
	var etaPtr *time.Time
	if !eta.IsZero() {
		etaPtr = &eta
	}

	if err := s.repo.AttachShipping(ctx, orderID, carrier, trackingNumber, etaPtr); err != nil {
		return fmt.Errorf("service: failed to attach shipping details: %w", err)
	}

	s.invalidateView(ctx, current.Number)
	return nil
}

func (s *service) invalidateView(ctx context.Context, number string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, number); err != nil {
		log.Warn().Err(err).Str("order_number", number).Msg("service: failed to invalidate tracking view cache")
	}
}

func validateBilling(b BillingDetails) error {
	required := []struct {
		field, value string
	}{
		{"name", b.Name},
		{"email", b.Email},
		{"phone", b.Phone},
		{"address", b.Address},
		{"city", b.City},
		{"state", b.State},
		{"zip", b.Zip},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: billing %s is required", ErrValidation, f.field)
		}
	}
	return nil
}

func numberFromID(id uuid.UUID) string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:12])
}
