package dto

import (
	"time"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/service"
)

// CartAddRequest payload for POST /api/v1/cart.
type CartAddRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartUpdateRequest payload for PUT /api/v1/cart/:id.
type CartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineResponse is one cart row with its product.
type CartLineResponse struct {
	ID            string          `json:"id"`
	Quantity      int             `json:"quantity"`
	SubtotalCents int64           `json:"subtotalCents"`
	AddedAt       time.Time       `json:"addedAt"`
	Product       ProductResponse `json:"product"`
}

// CartResponse is the whole cart.
type CartResponse struct {
	Items      []CartLineResponse `json:"items"`
	TotalCents int64              `json:"totalCents"`
}

// NewCartResponse maps a cart view.
func NewCartResponse(view *service.CartView) CartResponse {
	items := make([]CartLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		items = append(items, newCartLineResponse(line))
	}
	return CartResponse{Items: items, TotalCents: view.TotalCents}
}

func newCartLineResponse(line domain.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:            line.Item.ID,
		Quantity:      line.Item.Quantity,
		SubtotalCents: line.SubtotalCents(),
		AddedAt:       line.Item.CreatedAt,
		Product:       NewProductResponse(&line.Product),
	}
}
