package product

import (
	"context"

	"shopbuilder/internal/domain"
)

type Repository interface {
	ListByShop(ctx context.Context, shopID string) ([]domain.Product, error)
	GetByID(ctx context.Context, shopID, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
