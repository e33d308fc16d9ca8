package merchant

import (
	"context"

	"shopbuilder/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, m domain.Merchant) (*domain.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)
}
