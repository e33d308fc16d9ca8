package domain

import "strings"

// Checkout wizard steps. The flow is linear: address, shipping, payment,
// summary. No branching, no skipping.
const (
	StepAddress  = 1
	StepShipping = 2
	StepPayment  = 3
	StepSummary  = 4
)

// Address collects the shopper's contact and delivery details on step 1.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// Complete reports whether all seven required fields are non-empty. Country
// is defaulted by the storefront and not part of the gate.
func (a Address) Complete() bool {
	for _, v := range []string{a.FirstName, a.LastName, a.Email, a.Phone, a.Street, a.City, a.Zip} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// ShippingMethod is the shopper's frozen copy of a carrier option. Once
// selected, PriceCents does not track later catalog changes. FreeFromCents,
// when positive, overrides the shop-wide free-shipping threshold for this
// method.
type ShippingMethod struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"priceCents"`
	DeliveryTime  string `json:"deliveryTime,omitempty"`
	FreeFromCents int64  `json:"freeFromCents,omitempty"`
}

// PaymentType enumerates supported payment families.
type PaymentType string

const (
	PaymentTypeCard PaymentType = "card"
	PaymentTypeBank PaymentType = "bank"
	PaymentTypeCOD  PaymentType = "cod"
)

// PaymentMethod is the shopper's frozen copy of a payment option. FeeCents is
// an additive surcharge (e.g. cash on delivery).
type PaymentMethod struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     PaymentType `json:"type"`
	FeeCents int64       `json:"feeCents"`
}

// CheckoutState is the wizard's working state for one storefront session.
// Selections are value copies, never references into the live catalog.
type CheckoutState struct {
	Step           int             `json:"step"`
	Address        Address         `json:"address"`
	ShippingMethod *ShippingMethod `json:"shippingMethod,omitempty"`
	PaymentMethod  *PaymentMethod  `json:"paymentMethod,omitempty"`
	AgreeTerms     bool            `json:"agreeTerms"`
}

// NewCheckoutState returns the wizard's initial state: step 1, empty address,
// no selections.
func NewCheckoutState() CheckoutState {
	return CheckoutState{
		Step:    StepAddress,
		Address: Address{Country: "SK"},
	}
}

// Quote is the composed price preview shown alongside every step. Missing
// selections contribute zero so it is safe to compute at any point in the
// flow.
type Quote struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	FeeCents      int64 `json:"feeCents"`
	TotalCents    int64 `json:"totalCents"`
	FreeShipping  bool  `json:"freeShipping"`
}
