package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/partsden/storefront/internal/cart"
	"github.com/partsden/storefront/internal/order"
)

// cryptoPaymentNotice is surfaced to the customer for crypto checkouts, which
// settle only after manual verification.
const cryptoPaymentNotice = "payment pending manual verification"

type checkoutItem struct {
	ProductID       string          `json:"productId" validate:"required"`
	Name            string          `json:"name" validate:"required"`
	ImageURL        string          `json:"imageUrl"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Quantity        int             `json:"quantity" validate:"min=1"`
}

type billingDetailsDTO struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
}

type shippingDetailsDTO struct {
	Name    string `json:"name"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
}

// CheckoutRequest mirrors the storefront submission. The monetary fields the
// client computed for display (discount, shippingCost, salesTaxAmount, total)
// are accepted for wire compatibility but the engine reprices everything
// server-side; the persisted snapshot never trusts client arithmetic.
type CheckoutRequest struct {
	CartItems       []checkoutItem      `json:"cartItems" validate:"dive"`
	BillingDetails  billingDetailsDTO   `json:"billingDetails"`
	ShippingDetails *shippingDetailsDTO `json:"shippingDetails" validate:"omitempty"`
	PaymentMethod   string              `json:"paymentMethod" validate:"required"`
	CouponCode      string              `json:"couponCode"`
	Discount        decimal.Decimal     `json:"discount"`
	ShippingCost    decimal.Decimal     `json:"shippingCost"`
	SalesTaxAmount  decimal.Decimal     `json:"salesTaxAmount"`
	Total           decimal.Decimal     `json:"total"`
}

type CheckoutResponse struct {
	OrderID        string          `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	Status         string          `json:"status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	PaymentNotice  string          `json:"paymentNotice,omitempty"`
}

type CheckoutHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewCheckoutHandler(svc order.Service) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, validate: validator.New()}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to decode checkout request")
		respondWithError(w, http.StatusBadRequest, "validation_error", "invalid request payload")
		return
	}

	// The empty-cart case gets its own error kind; skip struct validation so
	// it is not swallowed by a generic field failure.
	if len(req.CartItems) > 0 {
		if err := h.validate.Struct(req); err != nil {
			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) {
				respondWithError(w, http.StatusBadRequest, "validation_error", formatValidationErrors(validationErrors))
				return
			}
			log.Error().Err(err).Msg("Unexpected error type during checkout validation")
			respondWithError(w, http.StatusInternalServerError, "internal_error", "internal validation error")
			return
		}
	}

	input := order.CreateInput{
		Items: make([]cart.LineItem, 0, len(req.CartItems)),
		Billing: order.BillingDetails{
			Name:    req.BillingDetails.Name,
			Email:   req.BillingDetails.Email,
			Phone:   req.BillingDetails.Phone,
			Address: req.BillingDetails.Address,
			City:    req.BillingDetails.City,
			State:   req.BillingDetails.State,
			Zip:     req.BillingDetails.Zip,
		},
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
	}
	for _, item := range req.CartItems {
		input.Items = append(input.Items, cart.LineItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			ImageURL:        item.ImageURL,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			Quantity:        item.Quantity,
		})
	}
	if req.ShippingDetails != nil {
		input.ShippingAddress = formatAddress(req.ShippingDetails)
	} else {
		input.ShippingAddress = fmt.Sprintf("%s, %s, %s %s",
			req.BillingDetails.Address, req.BillingDetails.City, req.BillingDetails.State, req.BillingDetails.Zip)
	}

	o, err := h.svc.Create(r.Context(), input)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create order")
		respondWithDomainError(w, err)
		return
	}

	resp := CheckoutResponse{
		OrderID:        o.ID.String(),
		OrderNumber:    o.Number,
		Status:         o.Status.String(),
		Subtotal:       o.Subtotal,
		ShippingCost:   o.ShippingCost,
		TaxAmount:      o.TaxAmount,
		DiscountAmount: o.DiscountAmount,
		Total:          o.GrandTotal,
	}
	if o.PaymentMethod == order.PaymentCrypto {
		resp.PaymentNotice = cryptoPaymentNotice
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

func formatAddress(s *shippingDetailsDTO) string {
	addr := fmt.Sprintf("%s, %s, %s %s", s.Address, s.City, s.State, s.Zip)
	if s.Name != "" {
		addr = s.Name + ", " + addr
	}
	return addr
}
