package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partsden/storefront/internal/order"
)

const trackingViewTTL = 10 * time.Minute

// TrackingCache is a Redis-backed order.TrackingCache. Entries expire on their
// own; status transitions and shipping updates invalidate them eagerly so the
// customer never sees a stale fulfillment stage for long.
type TrackingCache struct {
	client *redis.Client
}

func NewTrackingCache(client *redis.Client) *TrackingCache {
	return &TrackingCache{client: client}
}

func key(number string) string {
	return fmt.Sprintf("storefront:tracking:%s", number)
}

func (c *TrackingCache) Get(ctx context.Context, number string) (*order.CachedView, error) {
	raw, err := c.client.Get(ctx, key(number)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: failed to get tracking view: %w", err)
	}

	var cached order.CachedView
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("cache: failed to decode tracking view: %w", err)
	}
	return &cached, nil
}

func (c *TrackingCache) Set(ctx context.Context, number string, v *order.CachedView) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: failed to encode tracking view: %w", err)
	}
	if err := c.client.Set(ctx, key(number), raw, trackingViewTTL).Err(); err != nil {
		return fmt.Errorf("cache: failed to set tracking view: %w", err)
	}
	return nil
}

func (c *TrackingCache) Invalidate(ctx context.Context, number string) error {
	if err := c.client.Del(ctx, key(number)).Err(); err != nil {
		return fmt.Errorf("cache: failed to invalidate tracking view: %w", err)
	}
	return nil
}
