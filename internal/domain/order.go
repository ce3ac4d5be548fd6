package domain

import "time"

// OrderStatus tracks order lifecycle states.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a placed purchase with price-snapshotted items.
type Order struct {
	ID         string
	Number     string
	UserID     string
	Status     OrderStatus
	TotalCents int64
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem snapshots a product at the moment the order was placed, so
// later catalog edits do not rewrite order history.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	PriceCents  int64
	Quantity    int
}
