package settings

import (
	"context"

	"shopbuilder/internal/domain"
)

// Repository persists the durable copy of a shop's settings. Get returns
// domain.ErrNotFound when the shop has never saved settings; the service
// falls back to defaults in that case.
type Repository interface {
	Get(ctx context.Context, shopID string) (*domain.ShopSettings, error)
	Save(ctx context.Context, s domain.ShopSettings) error
}
