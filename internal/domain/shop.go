package domain

import "time"

// Shop is one merchant's storefront tenant. The slug scopes all public and
// dashboard routes.
type Shop struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"-"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Currency   string    `json:"currency"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
}
