package coupon_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsden/storefront/internal/coupon"
)

// Integration tests run against a live Postgres with migrations applied.
// They are skipped unless TEST_DB_HOST is set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping repository integration test")
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host,
		envOr("TEST_DB_PORT", "5432"),
		envOr("TEST_DB_USER", "postgres"),
		envOr("TEST_DB_PASSWORD", "postgres"),
		envOr("TEST_DB_NAME", "storefront_test"),
	)

	pool, err := pgxpool.New(context.Background(), connStr)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), "TRUNCATE TABLE coupons RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to truncate coupons table")

	return pool
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func seedCoupon(t *testing.T, pool *pgxpool.Pool, code string, usageLimit *int) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO coupons (code, discount_type, discount_value, usage_limit)
		VALUES ($1, 'percentage', 10, $2)
	`, code, usageLimit)
	require.NoError(t, err)
}

func TestRepository_FindByCode_CaseInsensitive(t *testing.T) {
	pool := testPool(t)
	repo := coupon.NewRepository(pool)
	seedCoupon(t, pool, "Save10", nil)

	for _, code := range []string{"Save10", "save10", "SAVE10"} {
		c, err := repo.FindByCode(context.Background(), code)
		require.NoError(t, err, "lookup with %q", code)
		assert.Equal(t, "Save10", c.Code)
	}

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, coupon.ErrNotFound)
}

func TestRepository_IncrementUsage_RespectsLimit(t *testing.T) {
	pool := testPool(t)
	repo := coupon.NewRepository(pool)
	limit := 3
	seedCoupon(t, pool, "CAPPED", &limit)

	ctx := context.Background()
	for i := 0; i < limit; i++ {
		require.NoError(t, repo.IncrementUsage(ctx, pool, "CAPPED"))
	}

	err := repo.IncrementUsage(ctx, pool, "CAPPED")
	assert.ErrorIs(t, err, coupon.ErrExhausted)

	c, err := repo.FindByCode(ctx, "CAPPED")
	require.NoError(t, err)
	assert.Equal(t, limit, c.UsageCount)
}

func TestRepository_IncrementUsage_UnknownCode(t *testing.T) {
	pool := testPool(t)
	repo := coupon.NewRepository(pool)

	err := repo.IncrementUsage(context.Background(), pool, "GHOST")
	assert.ErrorIs(t, err, coupon.ErrNotFound)
}

// A capped coupon must never be oversold: the exhaustion predicate lives in
// the UPDATE itself, so concurrent commits racing for the last uses serialize
// on the row and at most usage_limit of them succeed.
func TestRepository_IncrementUsage_ConcurrentCommitsNeverOversell(t *testing.T) {
	pool := testPool(t)
	repo := coupon.NewRepository(pool)
	limit := 5
	attempts := 20
	seedCoupon(t, pool, "LASTFEW", &limit)

	var wg sync.WaitGroup
	errOut := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errOut <- repo.IncrementUsage(context.Background(), pool, "LASTFEW")
		}()
	}
	wg.Wait()
	close(errOut)

	succeeded, exhausted := 0, 0
	for err := range errOut {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, coupon.ErrExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error from concurrent commit: %v", err)
		}
	}

	assert.Equal(t, limit, succeeded, "exactly usage_limit commits may succeed")
	assert.Equal(t, attempts-limit, exhausted)

	c, err := repo.FindByCode(context.Background(), "LASTFEW")
	require.NoError(t, err)
	assert.Equal(t, limit, c.UsageCount, "usage count must never exceed the limit")
}
