package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/partsden/storefront/internal/order"
)

// Tracker resolves an authenticated customer view of an order.
type Tracker interface {
	Track(ctx context.Context, orderNumber, email string) (*order.TrackingView, error)
}

type TrackingHandler struct {
	resolver Tracker
}

func NewTrackingHandler(resolver Tracker) *TrackingHandler {
	return &TrackingHandler{resolver: resolver}
}

// Track serves the authenticated customer view of an order. Both query
// parameters are required; the resolver returns one indistinguishable
// not-found error for a missing order and a mismatched email.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderNumber := r.URL.Query().Get("orderNumber")
	email := r.URL.Query().Get("email")

	view, err := h.resolver.Track(r.Context(), orderNumber, email)
	if err != nil {
		log.Debug().Err(err).Str("order_number", orderNumber).Msg("Tracking lookup failed")
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}
