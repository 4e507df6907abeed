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
	listTaxesSQL = `SELECT id, name, percentage FROM taxes ORDER BY name`

	getTaxByIDSQL = `SELECT id, name, percentage FROM taxes WHERE id = $1`

	upsertTaxSQL = `INSERT INTO taxes (id, name, percentage)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			percentage = EXCLUDED.percentage`
)

var _ pricing.TaxRepository = (*TaxRepository)(nil)

// TaxRepository implements pricing.TaxRepository backed by PostgreSQL.
type TaxRepository struct {
	pool *pgxpool.Pool
}

// NewTaxRepository returns a TaxRepository that uses the given pool.
func NewTaxRepository(pool *pgxpool.Pool) *TaxRepository {
	return &TaxRepository{pool: pool}
}

// List returns all tax rules ordered by name.
func (r *TaxRepository) List(ctx context.Context) ([]pricing.Tax, error) {
	rows, err := r.pool.Query(ctx, listTaxesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing taxes: %w", err)
	}
	return pgx.CollectRows(rows, scanTax)
}

// GetByID returns a single tax rule. Returns pricing.ErrTaxNotFound on a miss.
func (r *TaxRepository) GetByID(ctx context.Context, id string) (*pricing.Tax, error) {
	rows, err := r.pool.Query(ctx, getTaxByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting tax %q: %w", id, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTax)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pricing.ErrTaxNotFound
		}
		return nil, fmt.Errorf("getting tax %q: %w", id, err)
	}
	return &t, nil
}

// Upsert inserts or updates a tax rule.
func (r *TaxRepository) Upsert(ctx context.Context, t pricing.Tax) error {
	_, err := r.pool.Exec(ctx, upsertTaxSQL, t.ID, t.Name, t.Percentage)
	if err != nil {
		return fmt.Errorf("upserting tax %q: %w", t.ID, err)
	}
	return nil
}

func scanTax(row pgx.CollectableRow) (pricing.Tax, error) {
	var t pricing.Tax
	err := row.Scan(&t.ID, &t.Name, &t.Percentage)
	return t, err
}
