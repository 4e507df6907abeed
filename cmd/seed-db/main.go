// Command seed-db loads the catalog seed file into PostgreSQL: items,
// discount codes, and tax rules. Re-running it is safe; every record is
// upserted by id.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smtdev/storefront/internal/domain/catalog"
	"github.com/smtdev/storefront/internal/domain/pricing"
	"github.com/smtdev/storefront/internal/storage/postgres"
)

type itemJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

type discountJSON struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
}

type taxJSON struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

type catalogJSON struct {
	Items     []itemJSON     `json:"items"`
	Discounts []discountJSON `json:"discounts"`
	Taxes     []taxJSON      `json:"taxes"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var seed catalogJSON
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedItems(ctx, postgres.NewItemRepository(pool), seed.Items); err != nil {
		return errors.Wrap(err, "seed items")
	}
	if err := seedDiscounts(ctx, postgres.NewDiscountRepository(pool), seed.Discounts); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	if err := seedTaxes(ctx, postgres.NewTaxRepository(pool), seed.Taxes); err != nil {
		return errors.Wrap(err, "seed taxes")
	}

	return nil
}

func seedItems(ctx context.Context, repo *postgres.ItemRepository, items []itemJSON) error {
	slog.Info("upserting items", slog.Int("count", len(items)))

	for _, it := range items {
		if err := repo.Upsert(ctx, catalog.Item{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Currency:    it.Currency,
		}); err != nil {
			return errors.Wrapf(err, "upsert item %s", it.ID)
		}

		slog.Info("upserted item", slog.String("id", it.ID), slog.String("name", it.Name))
	}

	return nil
}

func seedDiscounts(ctx context.Context, repo *postgres.DiscountRepository, discounts []discountJSON) error {
	slog.Info("upserting discounts", slog.Int("count", len(discounts)))

	for _, d := range discounts {
		if err := repo.Upsert(ctx, pricing.Discount{
			ID:         d.ID,
			Code:       d.Code,
			Percentage: d.Percentage,
		}); err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.Code)
		}

		slog.Info("upserted discount", slog.String("code", d.Code))
	}

	return nil
}

func seedTaxes(ctx context.Context, repo *postgres.TaxRepository, taxes []taxJSON) error {
	slog.Info("upserting taxes", slog.Int("count", len(taxes)))

	for _, tx := range taxes {
		if err := repo.Upsert(ctx, pricing.Tax{
			ID:         tx.ID,
			Name:       tx.Name,
			Percentage: tx.Percentage,
		}); err != nil {
			return errors.Wrapf(err, "upsert tax %s", tx.ID)
		}

		slog.Info("upserted tax", slog.String("name", tx.Name))
	}

	return nil
}
