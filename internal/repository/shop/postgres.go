package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopbuilder/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const shopColumns = `id::text, merchant_id::text, slug, name, currency, published, created_at`

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	const q = `
SELECT ` + shopColumns + `
FROM shops
WHERE slug = $1
`
	return r.scanShop(r.pool.QueryRow(ctx, q, slug))
}

func (r *postgresRepo) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	const q = `
SELECT ` + shopColumns + `
FROM shops
WHERE slug = $1 AND published = true
`
	return r.scanShop(r.pool.QueryRow(ctx, q, slug))
}

func (r *postgresRepo) Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	const q = `
INSERT INTO shops (merchant_id, slug, name, currency, published)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + shopColumns + `
`
	out, err := r.scanShop(r.pool.QueryRow(ctx, q, shop.MerchantID, shop.Slug, shop.Name, shop.Currency, shop.Published))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) scanShop(row pgx.Row) (*domain.Shop, error) {
	var s domain.Shop
	err := row.Scan(&s.ID, &s.MerchantID, &s.Slug, &s.Name, &s.Currency, &s.Published, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
