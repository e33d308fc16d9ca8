package cart

import (
	"context"

	"shopbuilder/internal/domain"
)

// Repository stores session carts. Carts are keyed by shop and session id;
// a missing cart reads as an empty one, not an error.
type Repository interface {
	Get(ctx context.Context, shopID, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, shopID, sessionID string) error
}
