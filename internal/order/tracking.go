package order

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// defaultDeliveryWindow estimates delivery when fulfillment has not attached
// carrier data yet.
const defaultDeliveryWindow = 5 * 24 * time.Hour

// TrackingItem is the sanitized per-line view exposed to the customer.
type TrackingItem struct {
	Name     string          `json:"name"`
	ImageURL string          `json:"image_url,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// TrackingView is the customer-facing read view of an order. It carries no
// billing details beyond the formatted shipping address.
type TrackingView struct {
	OrderNumber       string          `json:"order_number"`
	PlacedAt          time.Time       `json:"placed_at"`
	Status            Status          `json:"status"`
	ShippingAddress   string          `json:"shipping_address"`
	Items             []TrackingItem  `json:"items"`
	Carrier           string          `json:"carrier,omitempty"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

// CachedView pairs a sanitized view with the billing email it was resolved
// for, so a cache hit still enforces the email check.
type CachedView struct {
	Email string       `json:"email"`
	View  TrackingView `json:"view"`
}

// TrackingCache stores resolved views keyed by order number. Implementations
// return (nil, nil) on a miss.
type TrackingCache interface {
	Get(ctx context.Context, number string) (*CachedView, error)
	Set(ctx context.Context, number string, v *CachedView) error
	Invalidate(ctx context.Context, number string) error
}

// TrackingResolver authorizes and serves the customer-facing order view. The
// billing email acts as a shared secret: a wrong order number and a wrong
// email produce the identical ErrOrderNotFound so the endpoint leaks nothing
// about which orders exist.
type TrackingResolver struct {
	repo  Repository
	cache TrackingCache
}

func NewTrackingResolver(repo Repository, cache TrackingCache) *TrackingResolver {
	return &TrackingResolver{repo: repo, cache: cache}
}

func (r *TrackingResolver) Track(ctx context.Context, orderNumber, email string) (*TrackingView, error) {
	if orderNumber == "" || email == "" {
		return nil, ErrOrderNotFound
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, orderNumber)
		if err != nil {
			log.Warn().Err(err).Str("order_number", orderNumber).Msg("tracking: cache read failed, falling through to store")
		} else if cached != nil {
			if cached.Email != email {
				return nil, ErrOrderNotFound
			}
			view := cached.View
			return &view, nil
		}
	}

	o, err := r.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if o.Billing.Email != email {
		return nil, ErrOrderNotFound
	}

	view := buildView(o)

	if r.cache != nil {
		if err := r.cache.Set(ctx, orderNumber, &CachedView{Email: o.Billing.Email, View: *view}); err != nil {
			log.Warn().Err(err).Str("order_number", orderNumber).Msg("tracking: failed to cache view")
		}
	}

	return view, nil
}

func buildView(o *Order) *TrackingView {
	eta := o.CreatedAt.Add(defaultDeliveryWindow)
	if o.EstimatedDelivery != nil {
		eta = *o.EstimatedDelivery
	}

	items := make([]TrackingItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, TrackingItem{
			Name:     item.Name,
			ImageURL: item.ImageURL,
			Quantity: item.Quantity,
			Price:    item.DiscountedUnitPrice(),
		})
	}

	return &TrackingView{
		OrderNumber:       o.Number,
		PlacedAt:          o.CreatedAt,
		Status:            o.Status,
		ShippingAddress:   o.ShippingAddress,
		Items:             items,
		Carrier:           o.Carrier,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: eta,
		GrandTotal:        o.GrandTotal,
	}
}
