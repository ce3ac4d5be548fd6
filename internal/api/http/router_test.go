package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stay-fcsd/ecommerce-api/internal/api/http/handlers"
	"github.com/stay-fcsd/ecommerce-api/internal/auth"
	"github.com/stay-fcsd/ecommerce-api/internal/config"
	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/observability"
	"github.com/stay-fcsd/ecommerce-api/internal/service"
	"github.com/stay-fcsd/ecommerce-api/internal/testutil"
)

type routerFixture struct {
	app  *fiber.App
	auth *service.AuthService
}

func newRouterFixture(t *testing.T, seed ...*domain.User) *routerFixture {
	t.Helper()

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.BcryptCost = bcrypt.MinCost

	users := testutil.NewUserRepo(seed...)
	products := testutil.NewProductRepo()
	cart := testutil.NewCartRepo(products)
	orders := testutil.NewOrderRepo(products, cart)
	dispatcher := &testutil.Dispatcher{}
	logger := zap.NewNop()

	authService := service.NewAuthService(cfg, users, dispatcher)
	productService := service.NewProductService(products, nil, 0, logger)
	cartService := service.NewCartService(cart, products)
	orderService := service.NewOrderService(orders, cart, dispatcher)

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: true,
	})
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second, false)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("ecommerce-api", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Products:       handlers.NewProductsHandler(productService),
		Cart:           handlers.NewCartHandler(cartService),
		Orders:         handlers.NewOrdersHandler(orderService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), users),
		Policy:         auth.DefaultPolicy(),
	})

	return &routerFixture{app: app, auth: authService}
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// signIn authenticates through the API and returns the issued token.
func (f *routerFixture) signIn(t *testing.T, email, password string) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/v1/signIn", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func seedManager(t *testing.T, email string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword("managerpw", bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           "mgr-1",
		FirstName:    "Meg",
		LastName:     "Anager",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleManager,
	}
}

func TestSignUpSignInFlow(t *testing.T) {
	f := newRouterFixture(t)

	registration := fiber.Map{
		"firstName":      "John",
		"lastName":       "Last",
		"email":          "john@x.com",
		"password":       "12345678",
		"verifyPassword": "12345678",
	}

	resp, body := f.do(t, http.MethodPost, "/api/v1/signUp", "", registration)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "john@x.com", body["email"])
	require.Equal(t, string(domain.RoleUser), body["role"])

	// Same email again must conflict with the fixed message.
	resp, body = f.do(t, http.MethodPost, "/api/v1/signUp", "", registration)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "User with this email already exists", body["message"])

	// Wrong password is rejected without revealing which part was wrong.
	resp, body = f.do(t, http.MethodPost, "/api/v1/signIn", "", fiber.Map{
		"email":    "john@x.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid email or password", body["message"])

	token := f.signIn(t, "john@x.com", "12345678")
	claims, err := f.auth.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "john@x.com", claims.Subject)
	require.Equal(t, domain.RoleUser, claims.Role)
}

func TestSignUpValidationErrors(t *testing.T) {
	f := newRouterFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/v1/signUp", "", fiber.Map{
		"firstName": "John",
		"email":     "not-an-email",
		"password":  "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "Validation error. Check 'errors' field for details.", body["message"])
	fields, ok := body["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, fields)
}

func TestCatalogAccessControl(t *testing.T) {
	manager := seedManager(t, "meg@x.com")
	f := newRouterFixture(t, manager)

	product := fiber.Map{
		"name":        "Mechanical Keyboard",
		"description": "Tenkeyless, brown switches",
		"priceCents":  12900,
		"stock":       5,
	}

	// Anonymous writers get 401, plain users 403.
	resp, _ := f.do(t, http.MethodPost, "/api/v1/products", "", product)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.do(t, http.MethodPost, "/api/v1/signUp", "", fiber.Map{
		"firstName":      "John",
		"lastName":       "Last",
		"email":          "john@x.com",
		"password":       "12345678",
		"verifyPassword": "12345678",
	})
	userToken := f.signIn(t, "john@x.com", "12345678")
	resp, _ = f.do(t, http.MethodPost, "/api/v1/products", userToken, product)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	managerToken := f.signIn(t, "meg@x.com", "managerpw")
	resp, created := f.do(t, http.MethodPost, "/api/v1/products", managerToken, product)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID, _ := created["id"].(string)
	require.NotEmpty(t, productID)

	// Reads are public.
	resp, fetched := f.do(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Mechanical Keyboard", fetched["name"])

	resp, _ = f.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCatalogWritesNotReachableThroughPathVariants(t *testing.T) {
	f := newRouterFixture(t)

	f.do(t, http.MethodPost, "/api/v1/signUp", "", fiber.Map{
		"firstName":      "John",
		"lastName":       "Last",
		"email":          "john@x.com",
		"password":       "12345678",
		"verifyPassword": "12345678",
	})
	userToken := f.signIn(t, "john@x.com", "12345678")

	product := fiber.Map{
		"name":        "Mechanical Keyboard",
		"description": "Tenkeyless, brown switches",
		"priceCents":  12900,
		"stock":       5,
	}

	// Case and trailing-slash variants must not dispatch to the handler the
	// policy table guards under the canonical path.
	for _, path := range []string{"/API/V1/PRODUCTS", "/Api/V1/Products", "/api/v1/products/"} {
		resp, _ := f.do(t, http.MethodPost, path, userToken, product)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, "path %q", path)
	}

	resp, _ := f.do(t, http.MethodPost, "/API/V1/PRODUCTS", "", product)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/products", userToken, product)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Nothing was created through any of the variants.
	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var listing []any
	require.NoError(t, json.Unmarshal(raw, &listing))
	require.Empty(t, listing)
}

func TestShoppingFlow(t *testing.T) {
	manager := seedManager(t, "meg@x.com")
	f := newRouterFixture(t, manager)

	managerToken := f.signIn(t, "meg@x.com", "managerpw")
	_, created := f.do(t, http.MethodPost, "/api/v1/products", managerToken, fiber.Map{
		"name":        "USB-C Cable",
		"description": "1m braided",
		"priceCents":  990,
		"stock":       10,
	})
	productID, _ := created["id"].(string)
	require.NotEmpty(t, productID)

	f.do(t, http.MethodPost, "/api/v1/signUp", "", fiber.Map{
		"firstName":      "John",
		"lastName":       "Last",
		"email":          "john@x.com",
		"password":       "12345678",
		"verifyPassword": "12345678",
	})
	userToken := f.signIn(t, "john@x.com", "12345678")

	// Cart is a protected surface.
	resp, _ := f.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/cart", userToken, fiber.Map{
		"productId": productID,
		"quantity":  3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, cart := f.do(t, http.MethodGet, "/api/v1/cart", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 2970, cart["totalCents"])

	resp, order := f.do(t, http.MethodPost, "/api/v1/orders", userToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.EqualValues(t, 2970, order["totalCents"])
	orderID, _ := order["id"].(string)
	require.NotEmpty(t, orderID)

	// Placing the order empties the cart and reserves stock.
	resp, cart = f.do(t, http.MethodGet, "/api/v1/cart", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 0, cart["totalCents"])

	resp, fetched := f.do(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 7, fetched["stock"])

	// Customers cannot move their own orders through the pipeline.
	resp, _ = f.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", userToken, fiber.Map{
		"status": "SHIPPED",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, updated := f.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", managerToken, fiber.Map{
		"status": "SHIPPED",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "SHIPPED", updated["status"])
}
