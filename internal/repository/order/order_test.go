package order

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"shopbuilder/internal/domain"
	"shopbuilder/internal/migrate"
)

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	shopID := seedShop(ctx, t, pool)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Order{
		ShopID:        shopID,
		OrderNumber:   "ORD-1",
		SubtotalCents: 3500,
		ShippingCents: 490,
		FeeCents:      150,
		TotalCents:    4140,
		Currency:      "EUR",
		Address: domain.Address{
			FirstName: "Jana", LastName: "Nova", Email: "jana@example.sk", Phone: "+421900000000",
			Street: "Hlavna 1", City: "Bratislava", Zip: "811 01", Country: "SK",
		},
		ShippingMethod: "dpd",
		PaymentMethod:  "cod",
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "Mug", Quantity: 2, PriceCents: 1000, TotalCents: 2000},
			{ProductID: "p2", Name: "Tee", Quantity: 3, PriceCents: 500, TotalCents: 1500},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}

	got, err := repo.GetByID(ctx, shopID, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TotalCents != 4140 || len(got.Items) != 2 {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestPostgres_ListFiltersAndPagination(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	shopID := seedShop(ctx, t, pool)
	repo := NewPostgres(pool, nil)

	for i, num := range []string{"ORD-10", "ORD-11", "ORD-12"} {
		o := domain.Order{
			ShopID: shopID, OrderNumber: num, Currency: "EUR",
			SubtotalCents: int64(100 * (i + 1)), TotalCents: int64(100 * (i + 1)),
			Address: domain.Address{
				FirstName: "A", LastName: "B", Email: "a@b.sk", Phone: "1",
				Street: "S", City: "C", Zip: "Z", Country: "SK",
			},
			ShippingMethod: "posta", PaymentMethod: "bankTransfer",
		}
		if _, err := repo.Create(ctx, o); err != nil {
			t.Fatalf("Create %s: %v", num, err)
		}
	}

	list, total, err := repo.ListByShop(ctx, shopID, ListFilter{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListByShop: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Fatalf("expected total=3 page=2 items, got total=%d len=%d", total, len(list))
	}

	list, total, err = repo.ListByShop(ctx, shopID, ListFilter{Search: "ORD-11"})
	if err != nil {
		t.Fatalf("ListByShop search: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].OrderNumber != "ORD-11" {
		t.Fatalf("unexpected search result total=%d list=%+v", total, list)
	}
}

func TestPostgres_UpdateEditableFields(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	shopID := seedShop(ctx, t, pool)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Order{
		ShopID: shopID, OrderNumber: "ORD-20", Currency: "EUR", TotalCents: 100,
		Address: domain.Address{
			FirstName: "A", LastName: "B", Email: "a@b.sk", Phone: "1",
			Street: "S", City: "C", Zip: "Z", Country: "SK",
		},
		ShippingMethod: "gls", PaymentMethod: "comgate",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := domain.OrderStatusShipped
	tracking := "TRK123"
	if err := repo.Update(ctx, shopID, created.ID, UpdateInput{Status: &status, TrackingNumber: &tracking}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, shopID, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.OrderStatusShipped || got.TrackingNumber != "TRK123" {
		t.Fatalf("unexpected order after update %+v", got)
	}

	if err := repo.Update(ctx, shopID, "00000000-0000-0000-0000-000000000000", UpdateInput{Status: &status}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown order, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, shop_settings, products, tokens, shops, merchants RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

func seedShop(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var merchantID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO merchants (email, password_hash) VALUES (gen_random_uuid()::text || '@test.sk', 'x') RETURNING id::text`,
	).Scan(&merchantID); err != nil {
		t.Fatalf("insert merchant: %v", err)
	}
	var shopID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO shops (merchant_id, slug, name, published) VALUES ($1, gen_random_uuid()::text, 'Shop', true) RETURNING id::text`,
		merchantID,
	).Scan(&shopID); err != nil {
		t.Fatalf("insert shop: %v", err)
	}
	return shopID
}
