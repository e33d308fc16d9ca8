package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopbuilder/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, shopID string) (*domain.ShopSettings, error) {
	const q = `
SELECT payments, shipping, general
FROM shop_settings
WHERE shop_id = $1
`
	var paymentsJSON, shippingJSON, generalJSON []byte
	if err := r.pool.QueryRow(ctx, q, shopID).Scan(&paymentsJSON, &shippingJSON, &generalJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	out := domain.ShopSettings{ShopID: shopID}
	if err := json.Unmarshal(paymentsJSON, &out.Payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &out.Shipping); err != nil {
		return nil, fmt.Errorf("decode shipping: %w", err)
	}
	if err := json.Unmarshal(generalJSON, &out.General); err != nil {
		return nil, fmt.Errorf("decode general: %w", err)
	}
	return &out, nil
}

func (r *postgresRepo) Save(ctx context.Context, s domain.ShopSettings) error {
	paymentsJSON, err := json.Marshal(s.Payments)
	if err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	shippingJSON, err := json.Marshal(s.Shipping)
	if err != nil {
		return fmt.Errorf("encode shipping: %w", err)
	}
	generalJSON, err := json.Marshal(s.General)
	if err != nil {
		return fmt.Errorf("encode general: %w", err)
	}

	const q = `
INSERT INTO shop_settings (shop_id, payments, shipping, general)
VALUES ($1, $2, $3, $4)
ON CONFLICT (shop_id) DO UPDATE SET
    payments = EXCLUDED.payments,
    shipping = EXCLUDED.shipping,
    general = EXCLUDED.general,
    updated_at = now()
`
	_, err = r.pool.Exec(ctx, q, s.ShopID, paymentsJSON, shippingJSON, generalJSON)
	return err
}
