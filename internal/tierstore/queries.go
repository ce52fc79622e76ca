package tierstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is the raw variant_pricing record as stored.
type Row struct {
	VariantID       uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	RegularPrice    *string
	ActivePrice     *string
	MinimumQuantity int32
	Tiers           []byte
}

// UpsertParams carries the columns written by UpsertVariantPricing.
type UpsertParams struct {
	VariantID       uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	RegularPrice    *string
	ActivePrice     *string
	MinimumQuantity int32
	Tiers           []byte
}

// PGQueries runs the tier pricing statements against a pgx pool.
type PGQueries struct {
	Pool *pgxpool.Pool
}

const getVariantPricing = `
SELECT variant_id, product_id, product_name,
       regular_price::text, price::text,
       minimum_quantity, tiers
FROM variant_pricing
WHERE variant_id = $1`

// GetVariantPricing fetches one variant. It returns pgx.ErrNoRows when absent.
func (q PGQueries) GetVariantPricing(ctx context.Context, id uuid.UUID) (Row, error) {
	var (
		row                  Row
		variantID, productID pgtype.UUID
	)
	err := q.Pool.QueryRow(ctx, getVariantPricing, pgUUID(id)).Scan(
		&variantID,
		&productID,
		&row.ProductName,
		&row.RegularPrice,
		&row.ActivePrice,
		&row.MinimumQuantity,
		&row.Tiers,
	)
	if err != nil {
		return Row{}, err
	}
	row.VariantID = uuid.UUID(variantID.Bytes)
	row.ProductID = uuid.UUID(productID.Bytes)
	return row, nil
}

const upsertVariantPricing = `
INSERT INTO variant_pricing (variant_id, product_id, product_name, regular_price, price, minimum_quantity, tiers, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7::jsonb, now())
ON CONFLICT (variant_id) DO UPDATE SET
    product_id       = EXCLUDED.product_id,
    product_name     = EXCLUDED.product_name,
    regular_price    = EXCLUDED.regular_price,
    price            = EXCLUDED.price,
    minimum_quantity = EXCLUDED.minimum_quantity,
    tiers            = EXCLUDED.tiers,
    updated_at       = now()`

// UpsertVariantPricing inserts or replaces one variant row.
func (q PGQueries) UpsertVariantPricing(ctx context.Context, arg UpsertParams) error {
	tiers := string(arg.Tiers)
	if tiers == "" {
		tiers = "[]"
	}
	if _, err := q.Pool.Exec(ctx, upsertVariantPricing,
		pgUUID(arg.VariantID),
		pgUUID(arg.ProductID),
		arg.ProductName,
		arg.RegularPrice,
		arg.ActivePrice,
		arg.MinimumQuantity,
		tiers,
	); err != nil {
		return fmt.Errorf("upsert variant pricing: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (q PGQueries) Ping(ctx context.Context) error {
	return q.Pool.Ping(ctx)
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
