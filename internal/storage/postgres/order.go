package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smtdev/storefront/internal/domain/order"
	"github.com/smtdev/storefront/internal/domain/pricing"
)

const (
	getOrderSQL = `SELECT o.id, o.total_price, o.created_at,
			d.id, d.code, d.percentage,
			t.id, t.name, t.percentage
		FROM orders o
		LEFT JOIN discounts d ON d.id = o.discount_id
		LEFT JOIN taxes t ON t.id = o.tax_id
		WHERE o.id = $1`

	getOrderLinesSQL = `SELECT i.id, i.name, i.description, i.price, i.currency, l.quantity
		FROM order_lines l
		JOIN items i ON i.id = l.item_id
		WHERE l.order_id = $1
		ORDER BY i.name`

	upsertOrderSQL = `INSERT INTO orders (id, discount_id, tax_id, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			discount_id = EXCLUDED.discount_id,
			tax_id = EXCLUDED.tax_id,
			total_price = EXCLUDED.total_price`

	deleteOrderLinesSQL = `DELETE FROM order_lines WHERE order_id = $1`

	insertOrderLineSQL = `INSERT INTO order_lines (order_id, item_id, quantity)
		VALUES ($1, $2, $3)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Get loads the order row with its discount/tax references resolved, then its
// lines joined with their items. Returns order.ErrNotFound on a miss.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	lineRows, err := r.pool.Query(ctx, getOrderLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting lines for order %q: %w", id, err)
	}
	lines, err := pgx.CollectRows(lineRows, scanOrderLine)
	if err != nil {
		return nil, fmt.Errorf("getting lines for order %q: %w", id, err)
	}
	o.Lines = lines

	return &o, nil
}

// Save writes the order row and replaces all of its lines in a single
// transaction, so the recomputed total and the mutation that produced it are
// persisted atomically.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning save of order %q: %w", o.ID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var discountID, taxID *string
	if o.Discount != nil {
		discountID = &o.Discount.ID
	}
	if o.Tax != nil {
		taxID = &o.Tax.ID
	}

	if _, err := tx.Exec(ctx, upsertOrderSQL,
		o.ID, discountID, taxID, o.Total, o.CreatedAt,
	); err != nil {
		return fmt.Errorf("upserting order %q: %w", o.ID, err)
	}

	if _, err := tx.Exec(ctx, deleteOrderLinesSQL, o.ID); err != nil {
		return fmt.Errorf("clearing lines of order %q: %w", o.ID, err)
	}

	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, insertOrderLineSQL, o.ID, l.Item.ID, l.Quantity); err != nil {
			return fmt.Errorf("inserting line (%q, %q): %w", o.ID, l.Item.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save of order %q: %w", o.ID, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		dID   *string
		dCode *string
		dPct  decimal.NullDecimal
		tID   *string
		tName *string
		tPct  decimal.NullDecimal
	)
	err := row.Scan(
		&o.ID, &o.Total, &o.CreatedAt,
		&dID, &dCode, &dPct,
		&tID, &tName, &tPct,
	)
	if err != nil {
		return o, err
	}

	if dID != nil {
		o.Discount = &pricing.Discount{ID: *dID, Code: *dCode, Percentage: dPct.Decimal}
	}
	if tID != nil {
		o.Tax = &pricing.Tax{ID: *tID, Name: *tName, Percentage: tPct.Decimal}
	}
	return o, nil
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(
		&l.Item.ID, &l.Item.Name, &l.Item.Description,
		&l.Item.Price, &l.Item.Currency, &l.Quantity,
	)
	return l, err
}
