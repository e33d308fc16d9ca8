package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopbuilder/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, shop_id::text, sku, name, description, price_cents, currency, active, created_at`

func (r *postgresRepo) ListByShop(ctx context.Context, shopID string) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE shop_id = $1 AND active = true
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, shopID)
	if err != nil {
		r.logger.Printf("product repo: list shop_id=%s error=%v", shopID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.ShopID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows shop_id=%s error=%v", shopID, err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, shopID, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE shop_id = $1 AND id = $2
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, shopID, id).Scan(&p.ID, &p.ShopID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get shop_id=%s id=%s error=%v", shopID, id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (shop_id, sku, name, description, price_cents, currency, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (shop_id, sku) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    active = EXCLUDED.active
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ShopID,
		product.SKU,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.Active,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert sku=%s shop_id=%s error=%v", product.SKU, product.ShopID, err)
		return nil, err
	}
	return &res, nil
}
