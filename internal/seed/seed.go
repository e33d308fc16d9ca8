package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"shopbuilder/internal/domain"
	settingssvc "shopbuilder/internal/service/settings"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
}

// Apply inserts demo data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, defaults settingssvc.Defaults) error {
	merchantID, err := ensureMerchant(ctx, pool, "demo@shopbuilder.local", "Demo1234")
	if err != nil {
		return fmt.Errorf("ensure merchant: %w", err)
	}

	shopID, err := ensureShop(ctx, pool, merchantID, "demo", "Demo Shop")
	if err != nil {
		return fmt.Errorf("ensure shop: %w", err)
	}

	products := []productSeed{
		{SKU: "SKU-ROSE", Name: "Ruža", Description: "Červená ruža, kus", PriceCents: 500},
		{SKU: "SKU-VASE", Name: "Váza", Description: "Sklenená váza", PriceCents: 2000},
		{SKU: "SKU-MUG", Name: "Hrnček", Description: "Keramický hrnček s logom", PriceCents: 1299},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, shopID, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	if err := ensureSettings(ctx, pool, shopID, defaults); err != nil {
		return fmt.Errorf("ensure settings: %w", err)
	}
	return nil
}

func ensureMerchant(ctx context.Context, pool *pgxpool.Pool, email, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	const q = `
INSERT INTO merchants (email, password_hash, first_name, last_name)
VALUES ($1, $2, 'Demo', 'Merchant')
ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, email, string(hashed)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureShop(ctx context.Context, pool *pgxpool.Pool, merchantID, slug, name string) (string, error) {
	const q = `
INSERT INTO shops (merchant_id, slug, name, currency, published)
VALUES ($1, $2, $3, 'EUR', true)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, published = true
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, merchantID, slug, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, shopID string, p productSeed) error {
	const q = `
INSERT INTO products (shop_id, sku, name, description, price_cents, currency, active)
VALUES ($1, $2, $3, $4, $5, 'EUR', true)
ON CONFLICT (shop_id, sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents
`
	_, err := pool.Exec(ctx, q, shopID, p.SKU, p.Name, p.Description, p.PriceCents)
	return err
}

// ensureSettings writes the default provider configuration once. An existing
// row is left alone so the seed never reverts a merchant's changes.
func ensureSettings(ctx context.Context, pool *pgxpool.Pool, shopID string, defaults settingssvc.Defaults) error {
	settings := settingssvc.New(nopSettingsRepo{}, defaults)
	s, err := settings.Get(ctx, shopID)
	if err != nil {
		return err
	}

	payments, err := json.Marshal(s.Payments)
	if err != nil {
		return err
	}
	shipping, err := json.Marshal(s.Shipping)
	if err != nil {
		return err
	}
	general, err := json.Marshal(s.General)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO shop_settings (shop_id, payments, shipping, general)
VALUES ($1, $2, $3, $4)
ON CONFLICT (shop_id) DO NOTHING
`
	_, err = pool.Exec(ctx, q, shopID, payments, shipping, general)
	return err
}

// nopSettingsRepo makes the settings service produce its defaults without
// touching the database.
type nopSettingsRepo struct{}

func (nopSettingsRepo) Get(context.Context, string) (*domain.ShopSettings, error) {
	return nil, domain.ErrNotFound
}

func (nopSettingsRepo) Save(context.Context, domain.ShopSettings) error { return nil }
