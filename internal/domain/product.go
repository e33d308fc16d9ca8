package domain

import "time"

// Product is a storefront catalog entry. The cart freezes its name and price
// at add time, so later catalog edits do not touch open carts.
type Product struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"-"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}
