package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/events"
	"github.com/stay-fcsd/ecommerce-api/internal/repository"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

// OrderService turns carts into orders and serves order history.
type OrderService struct {
	orders     repository.OrderRepository
	cart       repository.CartRepository
	dispatcher events.Dispatcher
}

// NewOrderService builds the service.
func NewOrderService(orders repository.OrderRepository, cart repository.CartRepository, dispatcher events.Dispatcher) *OrderService {
	return &OrderService{
		orders:     orders,
		cart:       cart,
		dispatcher: dispatcher,
	}
}

// PlaceOrder converts the user's cart into an order, snapshotting product
// names and prices. Stock decrements, the order insert and the cart clear
// commit together; a concurrent checkout that drains stock first rolls the
// whole order back.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string) (*domain.Order, error) {
	lines, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(lines) == 0 {
		return nil, apperrors.NewBadRequest("Cart is empty")
	}

	order := &domain.Order{
		Number: newOrderNumber(),
		UserID: userID,
		Status: domain.OrderStatusPlaced,
	}
	for _, line := range lines {
		if !line.Product.InStock(line.Item.Quantity) {
			return nil, apperrors.NewBadRequest("Not enough stock for product " + line.Product.Name)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			PriceCents:  line.Product.PriceCents,
			Quantity:    line.Item.Quantity,
		})
		order.TotalCents += line.SubtotalCents()
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, apperrors.NewBadRequest("Not enough stock")
		}
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventOrderPlaced,
			UserID:    userID,
			Timestamp: time.Now(),
			Payload: events.OrderPlacedPayload{
				OrderID:     order.ID,
				OrderNumber: order.Number,
				TotalCents:  order.TotalCents,
				ItemCount:   len(order.Items),
			},
		})
	}
	return order, nil
}

// GetOrder returns one of the user's own orders.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order")
		}
		return nil, apperrors.MapError(err)
	}
	return order, nil
}

// ListOrders returns the user's order history, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orders.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orders, nil
}

// UpdateStatus moves an order to a new lifecycle state. Restricted to
// elevated roles by the access policy.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	switch status {
	case domain.OrderStatusPlaced, domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled:
	default:
		return nil, apperrors.NewValidationError("Validation error. Check 'errors' field for details.",
			apperrors.FieldError{Field: "status", Message: "unknown order status"})
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order")
		}
		return nil, apperrors.MapError(err)
	}
	if order.Status == status {
		return order, nil
	}

	oldStatus := order.Status
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, apperrors.MapError(err)
	}
	order.Status = status

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventOrderStatusChanged,
			UserID:    order.UserID,
			Timestamp: time.Now(),
			Payload: events.OrderStatusChangedPayload{
				OrderID:   order.ID,
				OldStatus: oldStatus,
				NewStatus: status,
			},
		})
	}
	return order, nil
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
