package dto

import (
	"time"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
)

// OrderStatusRequest payload for PUT /api/v1/orders/:id/status.
type OrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderItemResponse is one snapshotted order line.
type OrderItemResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	PriceCents  int64  `json:"priceCents"`
	Quantity    int    `json:"quantity"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID         string              `json:"id"`
	Number     string              `json:"number"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"totalCents"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			PriceCents:  item.PriceCents,
			Quantity:    item.Quantity,
		})
	}
	return OrderResponse{
		ID:         order.ID,
		Number:     order.Number,
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		Items:      items,
		CreatedAt:  order.CreatedAt,
	}
}

// NewOrderListResponse maps a slice of domain orders.
func NewOrderListResponse(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
