package cart

import (
	"context"
	"sync"

	"shopbuilder/internal/domain"
)

type memoryRepo struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewMemory returns an in-process Repository. Carts survive only for the
// lifetime of the process; the redis repository covers anything longer.
func NewMemory() Repository {
	return &memoryRepo{carts: make(map[string]domain.Cart)}
}

func cartKey(shopID, sessionID string) string {
	return shopID + ":" + sessionID
}

func (r *memoryRepo) Get(_ context.Context, shopID, sessionID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cart, ok := r.carts[cartKey(shopID, sessionID)]; ok {
		out := cart
		out.Items = append([]domain.CartItem(nil), cart.Items...)
		return &out, nil
	}
	return &domain.Cart{ShopID: shopID, SessionID: sessionID}, nil
}

func (r *memoryRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *cart
	stored.Items = append([]domain.CartItem(nil), cart.Items...)
	r.carts[cartKey(cart.ShopID, cart.SessionID)] = stored
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, shopID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, cartKey(shopID, sessionID))
	return nil
}
