package product

import (
	"context"
	"errors"
	"strings"

	"shopbuilder/internal/domain"
	productrepo "shopbuilder/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the shop's active products in storefront order.
func (s *Service) List(ctx context.Context, shopID string) ([]domain.Product, error) {
	return s.repo.ListByShop(ctx, shopID)
}

func (s *Service) Get(ctx context.Context, shopID, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, shopID, id)
}

// UpsertInput carries a dashboard product create-or-update keyed by SKU.
type UpsertInput struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	Active      *bool  `json:"active"`
}

func (s *Service) Upsert(ctx context.Context, shopID string, in UpsertInput) (*domain.Product, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, errors.New("sku required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("name required")
	}
	if in.PriceCents < 0 {
		return nil, errors.New("price must not be negative")
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return s.repo.Upsert(ctx, domain.Product{
		ShopID:      shopID,
		SKU:         sku,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    in.Currency,
		Active:      active,
	})
}
