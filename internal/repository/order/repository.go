package order

import (
	"context"

	"shopbuilder/internal/domain"
)

// ListFilter narrows the dashboard order listing.
type ListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// UpdateInput carries the merchant-editable order fields. Nil fields are left
// untouched.
type UpdateInput struct {
	Status         *string
	PaymentStatus  *string
	TrackingNumber *string
	InternalNote   *string
}

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, shopID, id string) (*domain.Order, error)
	ListByShop(ctx context.Context, shopID string, filter ListFilter) ([]domain.Order, int64, error)
	Update(ctx context.Context, shopID, id string, in UpdateInput) error
}
