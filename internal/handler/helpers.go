package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/partsden/storefront/internal/cart"
	"github.com/partsden/storefront/internal/coupon"
	"github.com/partsden/storefront/internal/order"
)

// ErrorResponse is the structured error envelope every endpoint emits on
// failure.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"kind":"internal_error","message":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, code int, kind, message string) {
	respondWithJSON(w, code, ErrorResponse{Kind: kind, Message: message})
}

// mapError resolves a domain error to its HTTP status and error kind.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, order.ErrValidation), errors.Is(err, cart.ErrInvalidItem):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, order.ErrUnsupportedPaymentMethod):
		return http.StatusBadRequest, "unsupported_payment_method"
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, coupon.ErrNotFound):
		return http.StatusBadRequest, "coupon_not_found"
	case errors.Is(err, coupon.ErrExpired):
		return http.StatusBadRequest, "coupon_expired"
	case errors.Is(err, coupon.ErrExhausted):
		return http.StatusBadRequest, "coupon_exhausted"
	case errors.Is(err, coupon.ErrMinOrderNotMet):
		return http.StatusBadRequest, "min_order_not_met"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	code, kind := mapError(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		// Internal detail stays in the logs, not in the response body.
		message = "internal server error"
	}
	respondWithError(w, code, kind, message)
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	msg := "validation failed on fields:"
	for i, fe := range errs {
		if i > 0 {
			msg += ","
		}
		msg += " " + fe.Field()
	}
	return msg
}
