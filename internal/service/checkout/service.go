package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"shopbuilder/internal/domain"
)

// ErrStepInvalid wraps the reason TryAdvance refused to move forward.
var ErrStepInvalid = errors.New("step requirements not met")

// CartReader is the checkout's read-only view of the cart store. The wizard
// composes over cart totals but never owns cart items.
type CartReader interface {
	Get(ctx context.Context, shopID, sessionID string) (*domain.Cart, error)
	Clear(ctx context.Context, shopID, sessionID string) error
}

// OrderPlacer is the external order-creation collaborator. Place is the one
// asynchronous operation of the whole flow.
type OrderPlacer interface {
	Place(ctx context.Context, shop domain.Shop, cart domain.Cart, state domain.CheckoutState, quote domain.Quote) (*domain.Order, error)
}

// Idle sessions are evicted on the same horizon the redis cart store uses
// for abandoned carts.
const (
	sessionTTL = 24 * time.Hour
	sweepEvery = time.Hour
)

type session struct {
	state      domain.CheckoutState
	submitting bool
	touched    time.Time
}

// Service owns one CheckoutState per storefront session, guarded by a single
// mutex. State lives in process memory only; abandoning the session abandons
// the wizard.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session

	carts  CartReader
	placer OrderPlacer
	logger *log.Logger

	now       func() time.Time
	lastSweep time.Time

	// Shop-wide free shipping threshold applied when a method has no
	// FreeFromCents of its own.
	freeFromCents int64
}

func New(carts CartReader, placer OrderPlacer, freeFromCents int64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		sessions:      make(map[string]*session),
		carts:         carts,
		placer:        placer,
		logger:        logger,
		now:           time.Now,
		freeFromCents: freeFromCents,
	}
}

func sessionKey(shopID, sessionID string) string {
	return shopID + ":" + sessionID
}

// get returns the session, creating it on first touch. Session ids are
// client-supplied, so the map is bounded by evicting idle entries.
func (s *Service) get(shopID, sessionID string) *session {
	s.sweep()

	key := sessionKey(shopID, sessionID)
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{state: domain.NewCheckoutState()}
		s.sessions[key] = sess
	}
	sess.touched = s.now()
	return sess
}

// sweep drops sessions idle past the TTL. Called with the mutex held; runs
// at most once per sweep interval.
func (s *Service) sweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now
	for key, sess := range s.sessions {
		if !sess.submitting && now.Sub(sess.touched) > sessionTTL {
			delete(s.sessions, key)
		}
	}
}

// State returns a copy of the session's wizard state, creating the initial
// state on first touch.
func (s *Service) State(shopID, sessionID string) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(shopID, sessionID).state
}

// AddressPatch merges non-nil fields into the session's address. Partial
// updates are always allowed regardless of the current step.
type AddressPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Street    *string `json:"street"`
	City      *string `json:"city"`
	Zip       *string `json:"zip"`
	Country   *string `json:"country"`
}

func (s *Service) SetAddress(shopID, sessionID string, patch AddressPatch) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(shopID, sessionID)
	addr := &sess.state.Address
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&addr.FirstName, patch.FirstName)
	apply(&addr.LastName, patch.LastName)
	apply(&addr.Email, patch.Email)
	apply(&addr.Phone, patch.Phone)
	apply(&addr.Street, patch.Street)
	apply(&addr.City, patch.City)
	apply(&addr.Zip, patch.Zip)
	apply(&addr.Country, patch.Country)
	return sess.state
}

// SetShippingMethod freezes a value copy of the chosen method into the
// session. Later catalog price changes do not reach it.
func (s *Service) SetShippingMethod(shopID, sessionID string, method domain.ShippingMethod) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(shopID, sessionID)
	sess.state.ShippingMethod = &method
	return sess.state
}

func (s *Service) SetPaymentMethod(shopID, sessionID string, method domain.PaymentMethod) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(shopID, sessionID)
	sess.state.PaymentMethod = &method
	return sess.state
}

func (s *Service) SetAgreeTerms(shopID, sessionID string, agree bool) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(shopID, sessionID)
	sess.state.AgreeTerms = agree
	return sess.state
}

// TryAdvance validates the current step and moves forward only when the gate
// passes. The returned error carries the reason when it does not.
func (s *Service) TryAdvance(shopID, sessionID string) (domain.CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(shopID, sessionID)
	if !StepValid(sess.state, sess.state.Step) {
		return sess.state, fmt.Errorf("%w: %s", ErrStepInvalid, stepRequirement(sess.state.Step))
	}
	if sess.state.Step < domain.StepSummary {
		sess.state.Step++
	}
	return sess.state, nil
}

// Back moves one step toward the start. Going backward needs no validation
// and stops at step 1.
func (s *Service) Back(shopID, sessionID string) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(shopID, sessionID)
	if sess.state.Step > domain.StepAddress {
		sess.state.Step--
	}
	return sess.state
}

// Reset discards the session's wizard state. Used on cart re-entry and after
// successful submission.
func (s *Service) Reset(shopID, sessionID string) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(shopID, sessionID)
	sess.state = domain.NewCheckoutState()
	return sess.state
}

// Quote composes the live order summary for the session.
func (s *Service) Quote(ctx context.Context, shopID, sessionID string) (domain.Quote, error) {
	cart, err := s.carts.Get(ctx, shopID, sessionID)
	if err != nil {
		return domain.Quote{}, err
	}
	return ComputeQuote(s.State(shopID, sessionID), *cart, s.freeFromCents), nil
}

// Submit places the order. It is only permitted on the summary step with
// accepted terms, and at most one submission per session may be in flight.
// On success the cart is cleared and the wizard resets; on failure every
// piece of state stays exactly as it was.
func (s *Service) Submit(ctx context.Context, shop domain.Shop, sessionID string) (*domain.Order, error) {
	s.mu.Lock()
	sess := s.get(shop.ID, sessionID)
	if sess.submitting {
		s.mu.Unlock()
		return nil, domain.ErrSubmitInFlight
	}
	if sess.state.Step != domain.StepSummary || !sess.state.AgreeTerms {
		s.mu.Unlock()
		return nil, domain.ErrOrderNotSubmittable
	}
	sess.submitting = true
	state := sess.state
	s.mu.Unlock()

	finish := func() {
		s.mu.Lock()
		sess.submitting = false
		s.mu.Unlock()
	}

	cart, err := s.carts.Get(ctx, shop.ID, sessionID)
	if err != nil {
		finish()
		return nil, err
	}
	if cart.Count() == 0 {
		finish()
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrOrderNotSubmittable)
	}

	quote := ComputeQuote(state, *cart, s.freeFromCents)
	order, err := s.placer.Place(ctx, shop, *cart, state, quote)
	if err != nil {
		finish()
		return nil, err
	}

	// The order exists at this point. A cart-store failure must not surface
	// as a placement failure, or a retry would place the order twice.
	if err := s.carts.Clear(ctx, shop.ID, sessionID); err != nil {
		s.logger.Printf("checkout: order %s placed but cart not cleared shop_id=%s session_id=%s error=%v",
			order.OrderNumber, shop.ID, sessionID, err)
	}

	s.mu.Lock()
	sess.state = domain.NewCheckoutState()
	sess.submitting = false
	s.mu.Unlock()
	return order, nil
}

func stepRequirement(step int) string {
	switch step {
	case domain.StepAddress:
		return "all address fields are required"
	case domain.StepShipping:
		return "select a shipping method"
	case domain.StepPayment:
		return "select a payment method"
	case domain.StepSummary:
		return "terms must be accepted"
	default:
		return "unknown step"
	}
}
