package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stay-fcsd/ecommerce-api/internal/api/dto"
	"github.com/stay-fcsd/ecommerce-api/internal/auth"
	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/service"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

// OrdersHandler exposes order endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs the handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// Place handles POST /api/v1/orders.
func (h *OrdersHandler) Place(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	order, err := h.orders.PlaceOrder(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// List handles GET /api/v1/orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	orders, err := h.orders.ListOrders(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderListResponse(orders))
}

// Get handles GET /api/v1/orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	order, err := h.orders.GetOrder(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// UpdateStatus handles PUT /api/v1/orders/:id/status. The access policy
// restricts this route to ADMIN and MANAGER.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.OrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	order, err := h.orders.UpdateStatus(c.Context(), c.Params("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}
