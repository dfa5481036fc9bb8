package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/partsden/storefront/internal/order"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AttachShippingRequest struct {
	Carrier           string    `json:"carrier"`
	TrackingNumber    string    `json:"trackingNumber"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
}

// FulfillmentHandler exposes the operational endpoints the fulfillment side
// drives: advancing the status machine and attaching carrier details.
type FulfillmentHandler struct {
	svc order.Service
}

func NewFulfillmentHandler(svc order.Service) *FulfillmentHandler {
	return &FulfillmentHandler{svc: svc}
}

func (h *FulfillmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_error", "invalid request payload")
		return
	}

	if err := h.svc.Transition(r.Context(), orderID, order.Status(req.Status)); err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("Failed to update order status")
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FulfillmentHandler) AttachShipping(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req AttachShippingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_error", "invalid request payload")
		return
	}

	if err := h.svc.AttachShipping(r.Context(), orderID, req.Carrier, req.TrackingNumber, req.EstimatedDelivery); err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("Failed to attach shipping details")
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	orderID, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("order_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "validation_error", "invalid order id")
		return uuid.Nil, false
	}
	return orderID, true
}
