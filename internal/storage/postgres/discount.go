package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smtdev/storefront/internal/domain/pricing"
)

const (
	findDiscountByCodeSQL = `SELECT id, code, percentage
		FROM discounts WHERE UPPER(code) = UPPER($1)`

	upsertDiscountSQL = `INSERT INTO discounts (id, code, percentage)
		VALUES ($1, UPPER($2), $3)
		ON CONFLICT (code) DO UPDATE SET percentage = EXCLUDED.percentage`
)

var _ pricing.DiscountRepository = (*DiscountRepository)(nil)

// DiscountRepository implements pricing.DiscountRepository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up a discount rule by code (case-insensitive).
// Returns pricing.ErrUnknownCode when no rule matches.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*pricing.Discount, error) {
	rows, err := r.pool.Query(ctx, findDiscountByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pricing.ErrUnknownCode
		}
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}
	return &d, nil
}

// Upsert inserts or updates a discount rule, keyed by its unique code.
func (r *DiscountRepository) Upsert(ctx context.Context, d pricing.Discount) error {
	_, err := r.pool.Exec(ctx, upsertDiscountSQL, d.ID, d.Code, d.Percentage)
	if err != nil {
		return fmt.Errorf("upserting discount %q: %w", d.Code, err)
	}
	return nil
}

func scanDiscount(row pgx.CollectableRow) (pricing.Discount, error) {
	var d pricing.Discount
	err := row.Scan(&d.ID, &d.Code, &d.Percentage)
	return d, err
}
