package token

import (
	"context"
	"time"
)

// Token is an opaque bearer credential for a dashboard merchant account.
type Token struct {
	Token      string
	MerchantID string
	Kind       string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
