package merchant

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopbuilder/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const merchantColumns = `id::text, email, password_hash, first_name, last_name, created_at`

func (r *postgresRepo) Create(ctx context.Context, m domain.Merchant) (*domain.Merchant, error) {
	const q = `
INSERT INTO merchants (email, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4)
RETURNING ` + merchantColumns + `
`
	return r.scanMerchant(r.pool.QueryRow(ctx, q, strings.ToLower(m.Email), m.PasswordHash, m.FirstName, m.LastName))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	const q = `
SELECT ` + merchantColumns + `
FROM merchants
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanMerchant(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	const q = `
SELECT ` + merchantColumns + `
FROM merchants
WHERE id = $1
LIMIT 1
`
	return r.scanMerchant(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var m domain.Merchant
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.FirstName, &m.LastName, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("merchant repo: scan error=%v", err)
		return nil, err
	}
	return &m, nil
}
