package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stay-fcsd/ecommerce-api/internal/api/http/handlers"
	"github.com/stay-fcsd/ecommerce-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Products       *handlers.ProductsHandler
	Cart           *handlers.CartHandler
	Orders         *handlers.OrdersHandler
	AuthMiddleware *auth.Middleware
	Policy         *auth.Policy
}

// RegisterRoutes wires HTTP routes. The authentication filter runs first and
// attaches an identity when a valid token is present; the access policy then
// decides whether the request may proceed.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)
	app.Use(cfg.Policy.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/api/v1")

	v1.Post("/signUp", cfg.Auth.SignUp)
	v1.Post("/signIn", cfg.Auth.SignIn)

	v1.Get("/products", cfg.Products.List)
	v1.Get("/products/:id", cfg.Products.Get)
	v1.Post("/products", cfg.Products.Create)
	v1.Put("/products/:id", cfg.Products.Update)
	v1.Delete("/products/:id", cfg.Products.Delete)

	v1.Get("/cart", cfg.Cart.View)
	v1.Post("/cart", cfg.Cart.Add)
	v1.Put("/cart/:id", cfg.Cart.Update)
	v1.Delete("/cart/:id", cfg.Cart.Remove)

	v1.Post("/orders", cfg.Orders.Place)
	v1.Get("/orders", cfg.Orders.List)
	v1.Get("/orders/:id", cfg.Orders.Get)
	v1.Put("/orders/:id/status", cfg.Orders.UpdateStatus)
}
