package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

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

const orderColumns = `id::text, shop_id::text, order_number, status, payment_status,
       subtotal_cents, shipping_cents, fee_cents, total_cents, currency,
       first_name, last_name, email, phone, street, city, zip, country,
       shipping_method, payment_method, tracking_number, customer_note, internal_note,
       created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (shop_id, order_number, status, payment_status,
                    subtotal_cents, shipping_cents, fee_cents, total_cents, currency,
                    first_name, last_name, email, phone, street, city, zip, country,
                    shipping_method, payment_method, customer_note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
RETURNING id::text, created_at, updated_at
`
	out := o
	if err := tx.QueryRow(ctx, q,
		o.ShopID, o.OrderNumber, domain.OrderStatusPending, domain.PaymentStatusUnpaid,
		o.SubtotalCents, o.ShippingCents, o.FeeCents, o.TotalCents, o.Currency,
		o.Address.FirstName, o.Address.LastName, o.Address.Email, o.Address.Phone,
		o.Address.Street, o.Address.City, o.Address.Zip, o.Address.Country,
		o.ShippingMethod, o.PaymentMethod, o.CustomerNote,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	out.Status = domain.OrderStatusPending
	out.PaymentStatus = domain.PaymentStatusUnpaid

	for i := range o.Items {
		item := &o.Items[i]
		if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, name, quantity, price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`, out.ID, item.ProductID, item.Name, item.Quantity, item.PriceCents, item.TotalCents).Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		item.OrderID = out.ID
	}
	out.Items = o.Items

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order=%s shop=%s total=%d", out.OrderNumber, out.ShopID, out.TotalCents)
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, shopID, id string) (*domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE shop_id = $1 AND id = $2
`
	o, err := r.scanOrder(r.pool.QueryRow(ctx, q, shopID, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id, name, quantity, price_cents, total_cents
FROM order_items
WHERE order_id = $1
`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.PriceCents, &item.TotalCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByShop(ctx context.Context, shopID string, filter ListFilter) ([]domain.Order, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	where := []string{"shop_id = $1"}
	args := []interface{}{shopID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(order_number ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE ` + cond + fmt.Sprintf(`
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d
`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, shopID, id string, in UpdateInput) error {
	set := []string{"updated_at = now()"}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Status != nil {
		add("status", *in.Status)
	}
	if in.PaymentStatus != nil {
		add("payment_status", *in.PaymentStatus)
	}
	if in.TrackingNumber != nil {
		add("tracking_number", *in.TrackingNumber)
	}
	if in.InternalNote != nil {
		add("internal_note", *in.InternalNote)
	}

	args = append(args, id, shopID)
	q := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d AND shop_id = $%d",
		strings.Join(set, ", "), len(args)-1, len(args))

	cmd, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.ShopID, &o.OrderNumber, &o.Status, &o.PaymentStatus,
		&o.SubtotalCents, &o.ShippingCents, &o.FeeCents, &o.TotalCents, &o.Currency,
		&o.Address.FirstName, &o.Address.LastName, &o.Address.Email, &o.Address.Phone,
		&o.Address.Street, &o.Address.City, &o.Address.Zip, &o.Address.Country,
		&o.ShippingMethod, &o.PaymentMethod, &o.TrackingNumber, &o.CustomerNote, &o.InternalNote,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
