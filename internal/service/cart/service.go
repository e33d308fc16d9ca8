package cart

import (
	"context"
	"errors"
	"strings"

	"shopbuilder/internal/domain"
	cartrepo "shopbuilder/internal/repository/cart"
)

// Service implements the shopper's cart: line items keyed by product id,
// quantities, and recomputed totals. All reads and writes go through the
// session cart repository.
type Service struct {
	repo cartrepo.Repository
}

func New(repo cartrepo.Repository) *Service {
	return &Service{repo: repo}
}

// AddInput carries the frozen item fields captured at add time.
type AddInput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// AddItem inserts the item with quantity 1, or bumps the quantity by 1 when a
// line with the same id already exists. Repeated adds are always safe.
func (s *Service) AddItem(ctx context.Context, shopID, sessionID string, in AddInput) (*domain.Cart, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, errors.New("item id required")
	}
	if in.PriceCents < 0 {
		return nil, errors.New("price must not be negative")
	}

	cart, err := s.repo.Get(ctx, shopID, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == in.ID {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:         in.ID,
			Name:       in.Name,
			PriceCents: in.PriceCents,
			Quantity:   1,
		})
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes the matching line. A missing line is a no-op, not an
// error.
func (s *Service) RemoveItem(ctx context.Context, shopID, sessionID, itemID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, shopID, sessionID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity sets the line's quantity. A non-positive quantity removes
// the line entirely; zero-quantity lines never persist.
func (s *Service) UpdateQuantity(ctx context.Context, shopID, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, shopID, sessionID, itemID)
	}

	cart, err := s.repo.Get(ctx, shopID, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			break
		}
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart. Called after successful order placement.
func (s *Service) Clear(ctx context.Context, shopID, sessionID string) error {
	return s.repo.Delete(ctx, shopID, sessionID)
}

// Get returns the session's cart; a session that never added anything gets an
// empty cart.
func (s *Service) Get(ctx context.Context, shopID, sessionID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, shopID, sessionID)
}
