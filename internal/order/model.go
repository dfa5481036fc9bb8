package order

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsden/storefront/internal/cart"
)

// Status is the order's fulfillment stage. The progression is strictly
// forward; delivered is terminal.
type Status string

const (
	StatusPlaced         Status = "placed"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
)

func (s Status) String() string {
	return string(s)
}

var statusIndex = map[Status]int{
	StatusPlaced:         0,
	StatusProcessing:     1,
	StatusShipped:        2,
	StatusOutForDelivery: 3,
	StatusDelivered:      4,
}

// Known reports whether s is one of the defined fulfillment stages.
func (s Status) Known() bool {
	_, ok := statusIndex[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a forward step in
// the fulfillment progression.
func (s Status) CanTransitionTo(next Status) bool {
	from, okFrom := statusIndex[s]
	to, okTo := statusIndex[next]
	return okFrom && okTo && to > from
}

// Payment methods settle out-of-band via manual verification; the exact,
// inconsistently-cased strings are part of the public contract and must not be
// normalized without a client migration.
const (
	PaymentCashApp  = "Cash App"
	PaymentPaypal   = "Paypal"
	PaymentZelle    = "Zelle"
	PaymentApplePay = "Apple Pay"
	PaymentVenmo    = "Venmo"
	PaymentCrypto   = "crypto"
)

var supportedPaymentMethods = map[string]struct{}{
	PaymentCashApp:  {},
	PaymentPaypal:   {},
	PaymentZelle:    {},
	PaymentApplePay: {},
	PaymentVenmo:    {},
	PaymentCrypto:   {},
}

// PaymentMethodSupported reports whether method is one of the accepted
// out-of-band payment methods, exact casing included.
func PaymentMethodSupported(method string) bool {
	_, ok := supportedPaymentMethods[method]
	return ok
}

var (
	ErrEmptyCart                = errors.New("order must contain at least one item")
	ErrValidation               = errors.New("invalid order input")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrOrderNotFound            = errors.New("order not found")
	ErrInvalidTransition        = errors.New("invalid order status transition")
)

// BillingDetails identifies and locates the buyer. Email doubles as the shared
// secret for tracking lookups.
type BillingDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// Item is one line of the immutable cart snapshot persisted with the order.
type Item struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"image_url,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Quantity        int             `json:"quantity"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Order is the financial snapshot taken at checkout. Monetary fields and the
// item snapshot are never recomputed from live catalog data; status is the
// only field that advances after creation, plus carrier details attached by
// fulfillment.
type Order struct {
	ID                         uuid.UUID       `json:"id"`
	Number                     string          `json:"number"`
	Status                     Status          `json:"status"`
	PaymentMethod              string          `json:"payment_method"`
	PaymentPendingVerification bool            `json:"payment_pending_verification"`
	Billing                    BillingDetails  `json:"billing_details"`
	ShippingAddress            string          `json:"shipping_address,omitempty"`
	CouponCode                 string          `json:"coupon_code,omitempty"`
	Subtotal                   decimal.Decimal `json:"subtotal"`
	ShippingCost               decimal.Decimal `json:"shipping_cost"`
	TaxAmount                  decimal.Decimal `json:"tax_amount"`
	DiscountAmount             decimal.Decimal `json:"discount_amount"`
	GrandTotal                 decimal.Decimal `json:"grand_total"`
	Carrier                    string          `json:"carrier,omitempty"`
	TrackingNumber             string          `json:"tracking_number,omitempty"`
	EstimatedDelivery          *time.Time      `json:"estimated_delivery,omitempty"`
	Items                      []Item          `json:"items"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// DiscountedUnitPrice is the per-unit price after the snapshotted line
// discount, matching what the customer was actually charged.
func (i Item) DiscountedUnitPrice() decimal.Decimal {
	li := cart.LineItem{UnitPrice: i.UnitPrice, DiscountPercent: i.DiscountPercent}
	return li.DiscountedUnitPrice()
}

// SnapshotFromCart copies cart line items into the immutable order snapshot.
func SnapshotFromCart(items []cart.LineItem) []Item {
	snapshot := make([]Item, 0, len(items))
	for _, li := range items {
		snapshot = append(snapshot, Item{
			ProductID:       li.ProductID,
			Name:            li.Name,
			ImageURL:        li.ImageURL,
			UnitPrice:       li.UnitPrice,
			DiscountPercent: li.DiscountPercent,
			Quantity:        li.Quantity,
		})
	}
	return snapshot
}
