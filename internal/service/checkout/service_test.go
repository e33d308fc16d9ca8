package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopbuilder/internal/domain"
	cartrepo "shopbuilder/internal/repository/cart"
	cartsvc "shopbuilder/internal/service/cart"
)

type stubPlacer struct {
	mu      sync.Mutex
	err     error
	block   chan struct{}
	calls   int
	last    domain.Quote
	lastTot int64
}

func (p *stubPlacer) Place(_ context.Context, shop domain.Shop, cart domain.Cart, state domain.CheckoutState, quote domain.Quote) (*domain.Order, error) {
	p.mu.Lock()
	p.calls++
	p.last = quote
	p.lastTot = quote.TotalCents
	block := p.block
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Order{ID: "o1", ShopID: shop.ID, OrderNumber: "ORD-1", TotalCents: quote.TotalCents}, nil
}

func newFixture(placer *stubPlacer) (*Service, *cartsvc.Service) {
	carts := cartsvc.New(cartrepo.NewMemory())
	return New(carts, placer, 5000, nil), carts
}

func fillValidCheckout(t *testing.T, svc *Service, carts *cartsvc.Service) domain.Shop {
	t.Helper()
	ctx := context.Background()
	shop := domain.Shop{ID: "shop", Slug: "demo", Currency: "EUR"}

	if _, err := carts.AddItem(ctx, shop.ID, "sess", cartsvc.AddInput{ID: "p1", Name: "Mug", PriceCents: 1000}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	svc.SetAddress(shop.ID, "sess", fullAddressPatch())
	svc.SetShippingMethod(shop.ID, "sess", domain.ShippingMethod{ID: "dpd", Name: "DPD", PriceCents: 490})
	svc.SetPaymentMethod(shop.ID, "sess", domain.PaymentMethod{ID: "cod", Name: "Dobierka", Type: domain.PaymentTypeCOD, FeeCents: 150})
	svc.SetAgreeTerms(shop.ID, "sess", true)

	for i := 0; i < 3; i++ {
		if _, err := svc.TryAdvance(shop.ID, "sess"); err != nil {
			t.Fatalf("advance from step %d: %v", i+1, err)
		}
	}
	return shop
}

func strp(s string) *string { return &s }

func fullAddressPatch() AddressPatch {
	return AddressPatch{
		FirstName: strp("Jana"), LastName: strp("Nova"), Email: strp("jana@example.sk"),
		Phone: strp("+421900000000"), Street: strp("Hlavna 1"), City: strp("Bratislava"), Zip: strp("811 01"),
	}
}

func TestInitialState(t *testing.T) {
	svc, _ := newFixture(&stubPlacer{})
	state := svc.State("shop", "sess")
	if state.Step != domain.StepAddress {
		t.Fatalf("expected step 1, got %d", state.Step)
	}
	if state.ShippingMethod != nil || state.PaymentMethod != nil || state.AgreeTerms {
		t.Fatalf("expected pristine state, got %+v", state)
	}
}

func TestTryAdvanceBlockedByGate(t *testing.T) {
	svc, _ := newFixture(&stubPlacer{})

	patch := fullAddressPatch()
	patch.Zip = nil // address stays incomplete
	svc.SetAddress("shop", "sess", patch)

	state, err := svc.TryAdvance("shop", "sess")
	if !errors.Is(err, ErrStepInvalid) {
		t.Fatalf("expected ErrStepInvalid, got %v", err)
	}
	if state.Step != domain.StepAddress {
		t.Fatalf("step must not move on failed gate, got %d", state.Step)
	}
}

func TestStepBounds(t *testing.T) {
	svc, carts := newFixture(&stubPlacer{})
	shop := fillValidCheckout(t, svc, carts)

	// Already at step 4; a further advance stays put.
	state, err := svc.TryAdvance(shop.ID, "sess")
	if err != nil {
		t.Fatalf("advance at summary: %v", err)
	}
	if state.Step != domain.StepSummary {
		t.Fatalf("expected step capped at 4, got %d", state.Step)
	}

	for i := 0; i < 5; i++ {
		state = svc.Back(shop.ID, "sess")
	}
	if state.Step != domain.StepAddress {
		t.Fatalf("expected step floored at 1, got %d", state.Step)
	}
}

func TestSettersAllowedOnAnyStep(t *testing.T) {
	svc, _ := newFixture(&stubPlacer{})
	// Selecting shipping before finishing the address is legal at the store
	// level; only the gates order the UI.
	state := svc.SetShippingMethod("shop", "sess", domain.ShippingMethod{ID: "gls", PriceCents: 449})
	if state.ShippingMethod == nil || state.ShippingMethod.ID != "gls" {
		t.Fatalf("expected shipping selection stored, got %+v", state)
	}
	if state.Step != domain.StepAddress {
		t.Fatalf("setter must not move the step, got %d", state.Step)
	}
}

func TestSelectionIsFrozenCopy(t *testing.T) {
	svc, _ := newFixture(&stubPlacer{})
	method := domain.ShippingMethod{ID: "dpd", PriceCents: 490}
	svc.SetShippingMethod("shop", "sess", method)

	method.PriceCents = 999 // catalog price changes later
	state := svc.State("shop", "sess")
	if state.ShippingMethod.PriceCents != 490 {
		t.Fatalf("selection must not track catalog changes, got %d", state.ShippingMethod.PriceCents)
	}
}

func TestSubmitSuccessResetsEverything(t *testing.T) {
	placer := &stubPlacer{}
	svc, carts := newFixture(placer)
	shop := fillValidCheckout(t, svc, carts)
	ctx := context.Background()

	order, err := svc.Submit(ctx, shop, "sess")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order == nil || order.OrderNumber == "" {
		t.Fatalf("expected placed order, got %+v", order)
	}
	// 10.00 + 4.90 shipping + 1.50 fee
	if placer.lastTot != 1640 {
		t.Fatalf("expected quoted total 1640, got %d", placer.lastTot)
	}

	cart, err := carts.Get(ctx, shop.ID, "sess")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if cart.Count() != 0 {
		t.Fatalf("expected cart cleared, got count %d", cart.Count())
	}

	state := svc.State(shop.ID, "sess")
	if state.Step != domain.StepAddress || state.Address.FirstName != "" || state.ShippingMethod != nil || state.AgreeTerms {
		t.Fatalf("expected wizard reset, got %+v", state)
	}
}

func TestSubmitFailureLeavesStateUntouched(t *testing.T) {
	placer := &stubPlacer{err: errors.New("payment declined")}
	svc, carts := newFixture(placer)
	shop := fillValidCheckout(t, svc, carts)
	ctx := context.Background()

	before := svc.State(shop.ID, "sess")
	if _, err := svc.Submit(ctx, shop, "sess"); err == nil {
		t.Fatalf("expected submit error")
	}

	after := svc.State(shop.ID, "sess")
	if after.Step != before.Step || after.AgreeTerms != before.AgreeTerms {
		t.Fatalf("state changed on failed submit: before=%+v after=%+v", before, after)
	}
	if after.ShippingMethod == nil || after.ShippingMethod.ID != before.ShippingMethod.ID {
		t.Fatalf("shipping selection lost on failed submit")
	}
	if after.Address != before.Address {
		t.Fatalf("address changed on failed submit")
	}

	cart, _ := carts.Get(ctx, shop.ID, "sess")
	if cart.Count() == 0 {
		t.Fatalf("cart must survive a failed submit")
	}

	// The user may retry.
	if _, err := svc.Submit(ctx, shop, "sess"); err == nil {
		t.Fatalf("expected repeat failure from stub")
	}
}

func TestSubmitRequiresSummaryStepAndTerms(t *testing.T) {
	svc, carts := newFixture(&stubPlacer{})
	ctx := context.Background()
	shop := domain.Shop{ID: "shop", Slug: "demo"}

	if _, err := carts.AddItem(ctx, shop.ID, "sess", cartsvc.AddInput{ID: "p1", Name: "Mug", PriceCents: 1000}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if _, err := svc.Submit(ctx, shop, "sess"); !errors.Is(err, domain.ErrOrderNotSubmittable) {
		t.Fatalf("expected ErrOrderNotSubmittable at step 1, got %v", err)
	}
}

func TestSubmitReentrancyGuard(t *testing.T) {
	placer := &stubPlacer{block: make(chan struct{})}
	svc, carts := newFixture(placer)
	shop := fillValidCheckout(t, svc, carts)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, shop, "sess")
		done <- err
	}()

	// Wait for the first submit to reach the placer.
	for {
		placer.mu.Lock()
		calls := placer.calls
		placer.mu.Unlock()
		if calls > 0 {
			break
		}
	}

	if _, err := svc.Submit(ctx, shop, "sess"); !errors.Is(err, domain.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(placer.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}

	placer.mu.Lock()
	calls := placer.calls
	placer.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one placement, got %d", calls)
	}
}

type failingClearCarts struct {
	*cartsvc.Service
	clearErr error
}

func (f *failingClearCarts) Clear(ctx context.Context, shopID, sessionID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.Service.Clear(ctx, shopID, sessionID)
}

func TestSubmitClearFailureIsStillSuccess(t *testing.T) {
	placer := &stubPlacer{}
	carts := cartsvc.New(cartrepo.NewMemory())
	svc := New(&failingClearCarts{Service: carts, clearErr: errors.New("redis down")}, placer, 5000, nil)
	shop := fillValidCheckout(t, svc, carts)
	ctx := context.Background()

	order, err := svc.Submit(ctx, shop, "sess")
	if err != nil {
		t.Fatalf("placed order must not surface a cart-clear failure, got %v", err)
	}
	if order == nil || order.OrderNumber != "ORD-1" {
		t.Fatalf("expected placed order, got %+v", order)
	}

	// The wizard resets so a retry starts fresh instead of re-placing.
	state := svc.State(shop.ID, "sess")
	if state.Step != domain.StepAddress || state.AgreeTerms {
		t.Fatalf("state not reset after submit: %+v", state)
	}
	if _, err := svc.Submit(ctx, shop, "sess"); !errors.Is(err, domain.ErrOrderNotSubmittable) {
		t.Fatalf("retry after reset should be rejected, got %v", err)
	}

	placer.mu.Lock()
	calls := placer.calls
	placer.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one placement, got %d", calls)
	}
}

func TestSubmitEmptyCartRejected(t *testing.T) {
	svc, _ := newFixture(&stubPlacer{})
	shop := domain.Shop{ID: "shop", Slug: "demo"}

	svc.SetAddress(shop.ID, "sess", fullAddressPatch())
	svc.SetShippingMethod(shop.ID, "sess", domain.ShippingMethod{ID: "dpd", PriceCents: 490})
	svc.SetPaymentMethod(shop.ID, "sess", domain.PaymentMethod{ID: "card", Type: domain.PaymentTypeCard})
	svc.SetAgreeTerms(shop.ID, "sess", true)
	for i := 0; i < 3; i++ {
		if _, err := svc.TryAdvance(shop.ID, "sess"); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	if _, err := svc.Submit(context.Background(), shop, "sess"); !errors.Is(err, domain.ErrOrderNotSubmittable) {
		t.Fatalf("expected empty-cart rejection, got %v", err)
	}
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	svc, _ := newFixture(&stubPlacer{})
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }

	// A burst of client-chosen session ids must not pin memory forever.
	svc.SetAgreeTerms("shop", "old", true)
	for _, id := range []string{"drive-by-1", "drive-by-2", "drive-by-3"} {
		svc.State("shop", id)
	}

	now = now.Add(sessionTTL + sweepEvery + time.Minute)
	svc.State("shop", "fresh")

	svc.mu.Lock()
	remaining := len(svc.sessions)
	svc.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("expected only the fresh session to survive, got %d", remaining)
	}

	// A returning shopper gets a clean wizard, not stale consent.
	if state := svc.State("shop", "old"); state.AgreeTerms || state.Step != domain.StepAddress {
		t.Fatalf("evicted session not recreated fresh: %+v", state)
	}
}

func TestRecentSessionsSurviveSweep(t *testing.T) {
	svc, _ := newFixture(&stubPlacer{})
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }

	svc.SetAgreeTerms("shop", "active", true)

	// Re-touch within the TTL across several sweep windows.
	for i := 0; i < 30; i++ {
		now = now.Add(2 * time.Hour)
		svc.State("shop", "active")
	}

	if state := svc.State("shop", "active"); !state.AgreeTerms {
		t.Fatal("regularly touched session must keep its state")
	}
}

func TestQuoteThroughService(t *testing.T) {
	svc, carts := newFixture(&stubPlacer{})
	ctx := context.Background()

	if _, err := carts.AddItem(ctx, "shop", "sess", cartsvc.AddInput{ID: "p1", Name: "Mug", PriceCents: 4999}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	svc.SetShippingMethod("shop", "sess", domain.ShippingMethod{ID: "dpd", PriceCents: 490})

	q, err := svc.Quote(ctx, "shop", "sess")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.TotalCents != 5489 {
		t.Fatalf("expected total 5489, got %d", q.TotalCents)
	}
}
