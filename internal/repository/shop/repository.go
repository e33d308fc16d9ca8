package shop

import (
	"context"

	"shopbuilder/internal/domain"
)

type Repository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Shop, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*domain.Shop, error)
	Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)
}
