package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stay-fcsd/ecommerce-api/internal/api/dto"
	"github.com/stay-fcsd/ecommerce-api/internal/auth"
	"github.com/stay-fcsd/ecommerce-api/internal/service"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

// CartHandler exposes the authenticated user's cart endpoints.
type CartHandler struct {
	cart *service.CartService
}

// NewCartHandler constructs the handler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cart: cartService}
}

// View handles GET /api/v1/cart.
func (h *CartHandler) View(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	view, err := h.cart.View(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCartResponse(view))
}

// Add handles POST /api/v1/cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CartAddRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.ProductID == "" {
		return apperrors.NewValidationError("Validation error. Check 'errors' field for details.",
			apperrors.FieldError{Field: "productId", Message: "must not be blank"})
	}

	item, err := h.cart.AddItem(c.Context(), principal.User.ID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":        item.ID,
		"productId": item.ProductID,
		"quantity":  item.Quantity,
	})
}

// Update handles PUT /api/v1/cart/:id.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CartUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	if err := h.cart.UpdateItem(c.Context(), principal.User.ID, c.Params("id"), req.Quantity); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Remove handles DELETE /api/v1/cart/:id.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.cart.RemoveItem(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
