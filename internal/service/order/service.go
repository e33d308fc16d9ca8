package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopbuilder/internal/domain"
	orderrepo "shopbuilder/internal/repository/order"
)

// Service creates orders out of submitted checkouts and serves the dashboard
// order management operations.
type Service struct {
	repo orderrepo.Repository
	now  func() time.Time
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Place freezes a cart, checkout state and quote into a durable order. It is
// called by the checkout service on submission.
func (s *Service) Place(ctx context.Context, shop domain.Shop, cart domain.Cart, state domain.CheckoutState, quote domain.Quote) (*domain.Order, error) {
	o := domain.Order{
		ID:            uuid.NewString(),
		ShopID:        shop.ID,
		OrderNumber:   fmt.Sprintf("ORD-%d", s.now().UnixMilli()),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		SubtotalCents: quote.SubtotalCents,
		ShippingCents: quote.ShippingCents,
		FeeCents:      quote.FeeCents,
		TotalCents:    quote.TotalCents,
		Currency:      shop.Currency,
		Address:       state.Address,
	}
	if state.ShippingMethod != nil {
		o.ShippingMethod = state.ShippingMethod.ID
	}
	if state.PaymentMethod != nil {
		o.PaymentMethod = state.PaymentMethod.ID
	}
	for _, item := range cart.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			ProductID:  item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
			TotalCents: item.TotalCents(),
		})
	}
	return s.repo.Create(ctx, o)
}

// List returns one dashboard page of the shop's orders plus the unpaged total.
func (s *Service) List(ctx context.Context, shopID string, filter orderrepo.ListFilter) ([]domain.Order, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.ListByShop(ctx, shopID, filter)
}

func (s *Service) Get(ctx context.Context, shopID, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, shopID, id)
}

var validStatuses = map[string]bool{
	domain.OrderStatusPending:   true,
	domain.OrderStatusPaid:      true,
	domain.OrderStatusShipped:   true,
	domain.OrderStatusDelivered: true,
	domain.OrderStatusCancelled: true,
}

var validPaymentStatuses = map[string]bool{
	domain.PaymentStatusUnpaid: true,
	domain.PaymentStatusPaid:   true,
}

// Update applies the merchant-editable fields. Fields outside the allowed set
// never reach the repository, and statuses outside the lifecycle are rejected.
func (s *Service) Update(ctx context.Context, shopID, id string, in orderrepo.UpdateInput) (*domain.Order, error) {
	if in.Status != nil && !validStatuses[*in.Status] {
		return nil, fmt.Errorf("invalid status %q", *in.Status)
	}
	if in.PaymentStatus != nil && !validPaymentStatuses[*in.PaymentStatus] {
		return nil, fmt.Errorf("invalid payment status %q", *in.PaymentStatus)
	}
	if err := s.repo.Update(ctx, shopID, id, in); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, shopID, id)
}

// Cancel is a status shortcut for the dashboard.
func (s *Service) Cancel(ctx context.Context, shopID, id string) (*domain.Order, error) {
	cancelled := domain.OrderStatusCancelled
	return s.Update(ctx, shopID, id, orderrepo.UpdateInput{Status: &cancelled})
}
