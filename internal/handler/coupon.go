package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/partsden/storefront/internal/coupon"
	"github.com/partsden/storefront/internal/money"
)

type ApplyCouponRequest struct {
	CouponCode string          `json:"couponCode"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type ApplyCouponResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Cart    *appliedDiscount `json:"cart,omitempty"`
}

type appliedDiscount struct {
	Discount decimal.Decimal `json:"discount"`
}

type CouponHandler struct {
	svc coupon.Service
}

func NewCouponHandler(svc coupon.Service) *CouponHandler {
	return &CouponHandler{svc: svc}
}

// Apply previews a coupon against the shopper's current subtotal. It never
// mutates usage counts, so the shopper can re-apply freely while editing the
// cart. Rejections come back as success=false with a message rather than an
// HTTP error: a failed coupon is a recoverable storefront state, not a fault.
func (h *CouponHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyCouponRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to decode coupon apply request")
		respondWithError(w, http.StatusBadRequest, "validation_error", "invalid request payload")
		return
	}

	if req.CouponCode == "" {
		respondWithJSON(w, http.StatusOK, ApplyCouponResponse{Success: false, Message: "coupon code is required"})
		return
	}

	discount, err := h.svc.Preview(r.Context(), req.CouponCode, req.Subtotal)
	if err != nil {
		if coupon.IsDomainError(err) {
			respondWithJSON(w, http.StatusOK, ApplyCouponResponse{Success: false, Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("coupon_code", req.CouponCode).Msg("Failed to preview coupon")
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ApplyCouponResponse{
		Success: true,
		Cart:    &appliedDiscount{Discount: money.Round2(discount)},
	})
}
