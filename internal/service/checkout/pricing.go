package checkout

import "shopbuilder/internal/domain"

// ComputeQuote composes the payable amount from the cart subtotal, the
// selected shipping method and the selected payment method. Missing
// selections contribute zero so the quote is safe to render on every step.
//
// Shipping is waived when the subtotal reaches the method's own free-from
// limit, or the shop-wide threshold when the method doesn't carry one.
func ComputeQuote(state domain.CheckoutState, cart domain.Cart, defaultFreeFromCents int64) domain.Quote {
	q := domain.Quote{SubtotalCents: cart.SubtotalCents()}

	if state.ShippingMethod != nil {
		freeFrom := state.ShippingMethod.FreeFromCents
		if freeFrom <= 0 {
			freeFrom = defaultFreeFromCents
		}
		if freeFrom > 0 && q.SubtotalCents >= freeFrom {
			q.FreeShipping = true
		} else {
			q.ShippingCents = state.ShippingMethod.PriceCents
		}
	}

	if state.PaymentMethod != nil {
		q.FeeCents = state.PaymentMethod.FeeCents
	}

	q.TotalCents = q.SubtotalCents + q.ShippingCents + q.FeeCents
	return q
}

// StepValid is the wizard's gate predicate: whether the given step's
// requirements are met by the state. It never mutates anything; advancing is
// TryAdvance's job.
func StepValid(state domain.CheckoutState, step int) bool {
	switch step {
	case domain.StepAddress:
		return state.Address.Complete()
	case domain.StepShipping:
		return state.ShippingMethod != nil
	case domain.StepPayment:
		return state.PaymentMethod != nil
	case domain.StepSummary:
		return state.AgreeTerms
	default:
		return false
	}
}
