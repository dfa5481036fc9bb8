package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/partsden/storefront/internal/cache"
	"github.com/partsden/storefront/internal/coupon"
	"github.com/partsden/storefront/internal/handler"
	"github.com/partsden/storefront/internal/order"
	"github.com/partsden/storefront/internal/pricing"
)

func NewRouter(pool *pgxpool.Pool, redisClient *redis.Client, tax pricing.TaxCalculator) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	couponRepo := coupon.NewRepository(pool)
	couponSvc := coupon.NewService(couponRepo)

	trackingCache := cache.NewTrackingCache(redisClient)

	orderRepo := order.NewRepository(pool, couponRepo)
	orderSvc := order.NewService(orderRepo, couponSvc, tax, trackingCache)
	resolver := order.NewTrackingResolver(orderRepo, trackingCache)

	checkoutHandler := handler.NewCheckoutHandler(orderSvc)
	couponHandler := handler.NewCouponHandler(couponSvc)
	trackingHandler := handler.NewTrackingHandler(resolver)
	fulfillmentHandler := handler.NewFulfillmentHandler(orderSvc)

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Post("/coupons/apply", couponHandler.Apply)
		r.Get("/orders/track", trackingHandler.Track)
		r.Patch("/orders/{id}/status", fulfillmentHandler.UpdateStatus)
		r.Patch("/orders/{id}/shipping", fulfillmentHandler.AttachShipping)
	})

	return r
}
