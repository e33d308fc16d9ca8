package domain

import "time"

// Order statuses follow the dashboard's lifecycle. Orders enter as pending
// and are moved by the merchant.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Order is the durable record written on successful checkout submission.
type Order struct {
	ID             string      `json:"id"`
	ShopID         string      `json:"-"`
	OrderNumber    string      `json:"orderNumber"`
	Status         string      `json:"status"`
	PaymentStatus  string      `json:"paymentStatus"`
	SubtotalCents  int64       `json:"subtotalCents"`
	ShippingCents  int64       `json:"shippingCents"`
	FeeCents       int64       `json:"feeCents"`
	TotalCents     int64       `json:"totalCents"`
	Currency       string      `json:"currency"`
	Address        Address     `json:"address"`
	ShippingMethod string      `json:"shippingMethod"`
	PaymentMethod  string      `json:"paymentMethod"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	CustomerNote   string      `json:"customerNote,omitempty"`
	InternalNote   string      `json:"internalNote,omitempty"`
	Items          []OrderItem `json:"items,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// OrderItem is a cart line frozen into an order.
type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"-"`
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
	TotalCents int64  `json:"totalCents"`
}
