package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/repository"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

// CartView is a user's cart with the running total at current prices.
type CartView struct {
	Lines      []domain.CartLine
	TotalCents int64
}

// CartService manages the authenticated user's shopping cart.
type CartService struct {
	cart     repository.CartRepository
	products repository.ProductRepository
}

// NewCartService builds the service.
func NewCartService(cart repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{cart: cart, products: products}
}

// AddItem puts a product in the cart, merging with an existing line for the
// same product.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, apperrors.NewValidationError("Validation error. Check 'errors' field for details.",
			apperrors.FieldError{Field: "quantity", Message: "must be at least 1"})
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product")
		}
		return nil, apperrors.MapError(err)
	}
	if !product.InStock(quantity) {
		return nil, apperrors.NewBadRequest("Not enough stock for product " + product.Name)
	}

	item := &domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cart.Upsert(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// UpdateItem sets the quantity of an existing cart line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidationError("Validation error. Check 'errors' field for details.",
			apperrors.FieldError{Field: "quantity", Message: "must be at least 1"})
	}

	if err := s.cart.UpdateQuantity(ctx, itemID, userID, quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("cart item")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// RemoveItem deletes a cart line belonging to the user.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if err := s.cart.Delete(ctx, itemID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("cart item")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// View returns the user's cart lines, newest first, with the current total.
func (s *CartService) View(ctx context.Context, userID string) (*CartView, error) {
	lines, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	view := &CartView{Lines: lines}
	for _, line := range lines {
		view.TotalCents += line.SubtotalCents()
	}
	return view, nil
}
