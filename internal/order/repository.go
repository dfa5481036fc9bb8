package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/partsden/storefront/internal/coupon"
)

type Repository interface {
	// Create persists the order and its item snapshot in one transaction.
	// When the order carries a coupon code, the coupon usage increment joins
	// the same transaction, so a failed order write never leaves an orphaned
	// usage increment.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) error
	// AttachShipping stores carrier details; a nil eta stays NULL so the
	// tracking view keeps its createdAt-based delivery estimate.
	AttachShipping(ctx context.Context, id uuid.UUID, carrier, trackingNumber string, eta *time.Time) error
}

type postgresRepository struct {
	db      *pgxpool.Pool
	coupons coupon.Repository
}

func NewRepository(db *pgxpool.Pool, coupons coupon.Repository) Repository {
	return &postgresRepository{db: db, coupons: coupons}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback order transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (
			id, order_number, status, payment_method, payment_pending_verification,
			billing_name, billing_email, billing_phone, billing_address, billing_city, billing_state, billing_zip,
			shipping_address, coupon_code,
			subtotal, shipping_cost, tax_amount, discount_amount, grand_total,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, ''), $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID,
		o.Number,
		string(o.Status),
		o.PaymentMethod,
		o.PaymentPendingVerification,
		o.Billing.Name,
		o.Billing.Email,
		o.Billing.Phone,
		o.Billing.Address,
		o.Billing.City,
		o.Billing.State,
		o.Billing.Zip,
		o.ShippingAddress,
		o.CouponCode,
		o.Subtotal,
		o.ShippingCost,
		o.TaxAmount,
		o.DiscountAmount,
		o.GrandTotal,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, name, image_url, unit_price, discount_percent, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range o.Items {
		item := &o.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
		}
		item.ID = itemID
		item.OrderID = o.ID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.ImageURL,
			item.UnitPrice,
			item.DiscountPercent,
			item.Quantity,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	if o.CouponCode != "" {
		if err = r.coupons.IncrementUsage(ctx, tx, o.CouponCode); err != nil {
			return err
		}
	}

	return nil
}

const orderColumns = `
	id, order_number, status, payment_method, payment_pending_verification,
	billing_name, billing_email, billing_phone, billing_address, billing_city, billing_state, billing_zip,
	COALESCE(shipping_address, ''), COALESCE(coupon_code, ''),
	subtotal, shipping_cost, tax_amount, discount_amount, grand_total,
	COALESCE(carrier, ''), COALESCE(tracking_number, ''), estimated_delivery,
	created_at, updated_at
`

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getOne(ctx, "SELECT"+orderColumns+"FROM orders WHERE id = $1", id)
}

func (r *postgresRepository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, "SELECT"+orderColumns+"FROM orders WHERE order_number = $1", number)
}

func (r *postgresRepository) getOne(ctx context.Context, query string, arg any) (*Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&o.ID,
		&o.Number,
		&o.Status,
		&o.PaymentMethod,
		&o.PaymentPendingVerification,
		&o.Billing.Name,
		&o.Billing.Email,
		&o.Billing.Phone,
		&o.Billing.Address,
		&o.Billing.City,
		&o.Billing.State,
		&o.Billing.Zip,
		&o.ShippingAddress,
		&o.CouponCode,
		&o.Subtotal,
		&o.ShippingCost,
		&o.TaxAmount,
		&o.DiscountAmount,
		&o.GrandTotal,
		&o.Carrier,
		&o.TrackingNumber,
		&o.EstimatedDelivery,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order: %w", err)
	}

	queryItems := `
		SELECT id, order_id, product_id, name, COALESCE(image_url, ''), unit_price, discount_percent, quantity, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, queryItems, o.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", o.ID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.ImageURL,
			&item.UnitPrice,
			&item.DiscountPercent,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", o.ID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", o.ID, err)
	}

	o.Items = items
	return &o, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status for %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) AttachShipping(ctx context.Context, id uuid.UUID, carrier, trackingNumber string, eta *time.Time) error {
	query := `
		UPDATE orders
		SET carrier = $1, tracking_number = $2, estimated_delivery = $3, updated_at = $4
		WHERE id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query, carrier, trackingNumber, eta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to attach shipping details for %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
