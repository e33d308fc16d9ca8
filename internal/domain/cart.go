package domain

// CartItem is a single line in a shopper's cart, identified by product (or
// variant) id. The price is frozen at add time and not re-read from the
// catalog afterwards.
type CartItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

// TotalCents is price times quantity for this line.
func (i CartItem) TotalCents() int64 {
	return i.PriceCents * int64(i.Quantity)
}

// Cart holds the items a storefront session has selected. A stored cart never
// contains a line with quantity below 1; dropping a quantity to zero removes
// the line.
type Cart struct {
	SessionID string     `json:"sessionId"`
	ShopID    string     `json:"-"`
	Items     []CartItem `json:"items"`
}

// Count sums quantities across all lines (cart badge semantics, not the
// number of distinct lines).
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// SubtotalCents recomputes the cart subtotal on every call.
func (c Cart) SubtotalCents() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.TotalCents()
	}
	return sum
}
