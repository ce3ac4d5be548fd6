package domain

import "time"

// CartItem is a single product entry in a user's shopping cart.
type CartItem struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine pairs a cart item with its resolved product for presentation
// and order placement.
type CartLine struct {
	Item    CartItem
	Product Product
}

// SubtotalCents returns the line price at current catalog prices.
func (l CartLine) SubtotalCents() int64 {
	return l.Product.PriceCents * int64(l.Item.Quantity)
}
