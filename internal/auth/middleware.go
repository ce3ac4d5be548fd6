package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/repository"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the rest of the request.
type Principal struct {
	User *domain.User
	Role domain.UserRole
}

// Middleware validates bearer tokens and loads the account behind them. It
// never rejects a request on its own except when a well-signed token points
// at an account that no longer exists; requests without a usable token simply
// continue anonymously and the access policy decides downstream.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs the authentication filter.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle runs once per request before routing.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token, ok := bearerToken(c.Get("Authorization"))
	if !ok {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return c.Next()
	}

	user, err := m.users.GetByEmail(c.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidToken()
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Role: user.Role})
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// PrincipalFromContext retrieves the authenticated entity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
