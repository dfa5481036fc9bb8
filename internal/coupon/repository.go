package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Execer is the subset of pgx execution shared by *pgxpool.Pool and pgx.Tx.
// IncrementUsage takes it so the order repository can run the usage increment
// on the same transaction as the order insert.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	IncrementUsage(ctx context.Context, db Execer, code string) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, expires_at, usage_limit, usage_count, min_order_value, created_at, updated_at
		FROM coupons
		WHERE lower(code) = lower($1)
	`

	var c Coupon
	err := r.db.QueryRow(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.ExpiresAt,
		&c.UsageLimit,
		&c.UsageCount,
		&c.MinOrderValue,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select coupon %q: %w", code, err)
	}

	return &c, nil
}

// IncrementUsage performs the atomic guarded increment. The exhaustion
// predicate lives in the WHERE clause so two checkouts racing for the last use
// of a capped coupon serialize on the row: at most usage_limit increments ever
// succeed, never more.
func (r *postgresRepository) IncrementUsage(ctx context.Context, db Execer, code string) error {
	query := `
		UPDATE coupons
		SET usage_count = usage_count + 1, updated_at = now()
		WHERE lower(code) = lower($1)
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
	`

	cmdTag, err := db.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("repository: failed to increment usage for coupon %q: %w", code, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Zero rows means either the code vanished or the cap is reached;
		// distinguish so callers see the right sentinel.
		if _, findErr := r.FindByCode(ctx, code); errors.Is(findErr, ErrNotFound) {
			return ErrNotFound
		}
		log.Warn().Str("code", code).Msg("repository: coupon usage limit reached during commit")
		return ErrExhausted
	}

	return nil
}
