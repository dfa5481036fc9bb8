package order_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsden/storefront/internal/coupon"
	"github.com/partsden/storefront/internal/order"
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

	_, err = pool.Exec(context.Background(), "TRUNCATE TABLE orders, order_items, coupons RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to truncate tables")

	return pool
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func sampleOrder(t *testing.T) *order.Order {
	t.Helper()
	id := uuid.Must(uuid.NewV4())
	return &order.Order{
		ID:                         id,
		Number:                     "ORD-" + id.String()[:12],
		Status:                     order.StatusPlaced,
		PaymentMethod:              order.PaymentVenmo,
		PaymentPendingVerification: true,
		Billing: order.BillingDetails{
			Name:    "Jordan Michaels",
			Email:   "jordan@example.com",
			Phone:   "555-0101",
			Address: "12 Main St",
			City:    "Springfield",
			State:   "IL",
			Zip:     "62701",
		},
		ShippingAddress: "12 Main St, Springfield, IL 62701",
		Subtotal:        dec("1000"),
		ShippingCost:    dec("100"),
		TaxAmount:       dec("70"),
		DiscountAmount:  dec("0"),
		GrandTotal:      dec("1170"),
		Items: []order.Item{
			{ProductID: "brake-pads", Name: "Brake Pads", UnitPrice: dec("500"), DiscountPercent: dec("0"), Quantity: 2},
		},
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	pool := testPool(t)
	repo := order.NewRepository(pool, coupon.NewRepository(pool))

	ctx := context.Background()
	o := sampleOrder(t)
	require.NoError(t, repo.Create(ctx, o))

	byID, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, byID.Number)
	assert.Equal(t, order.StatusPlaced, byID.Status)
	assert.True(t, byID.PaymentPendingVerification)
	assert.True(t, dec("1170").Equal(byID.GrandTotal))
	require.Len(t, byID.Items, 1)
	assert.Equal(t, "brake-pads", byID.Items[0].ProductID)
	assert.Equal(t, 2, byID.Items[0].Quantity)

	byNumber, err := repo.GetByNumber(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byNumber.ID)

	_, err = repo.GetByNumber(ctx, "ORD-DOESNOTEXIST")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestRepository_Create_CouponCommitJoinsTransaction(t *testing.T) {
	pool := testPool(t)
	couponRepo := coupon.NewRepository(pool)
	repo := order.NewRepository(pool, couponRepo)
	ctx := context.Background()

	limit := 1
	_, err := pool.Exec(ctx, `
		INSERT INTO coupons (code, discount_type, discount_value, usage_limit)
		VALUES ('LASTONE', 'percentage', 10, $1)
	`, limit)
	require.NoError(t, err)

	first := sampleOrder(t)
	first.CouponCode = "LASTONE"
	first.DiscountAmount = dec("100")
	first.GrandTotal = dec("1070")
	require.NoError(t, repo.Create(ctx, first))

	c, err := couponRepo.FindByCode(ctx, "LASTONE")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsageCount)

	// Second order racing for the same exhausted coupon: the whole
	// transaction fails, no partial order row survives.
	second := sampleOrder(t)
	second.CouponCode = "LASTONE"
	err = repo.Create(ctx, second)
	require.ErrorIs(t, err, coupon.ErrExhausted)

	_, err = repo.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound, "failed coupon commit must roll back the order insert")

	c, err = couponRepo.FindByCode(ctx, "LASTONE")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsageCount, "usage count must not move on a failed order")
}

func TestRepository_UpdateStatusAndAttachShipping(t *testing.T) {
	pool := testPool(t)
	repo := order.NewRepository(pool, coupon.NewRepository(pool))
	ctx := context.Background()

	o := sampleOrder(t)
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, order.StatusShipped))

	eta := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	require.NoError(t, repo.AttachShipping(ctx, o.ID, "UPS", "1Z999", &eta))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)
	assert.Equal(t, "UPS", got.Carrier)
	assert.Equal(t, "1Z999", got.TrackingNumber)
	require.NotNil(t, got.EstimatedDelivery)
	assert.True(t, eta.Equal(got.EstimatedDelivery.UTC()))

	// Monetary snapshot is untouched by operational updates.
	assert.True(t, dec("1170").Equal(got.GrandTotal))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.Must(uuid.NewV4()), order.StatusShipped), order.ErrOrderNotFound)
}
