package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

// PolicyRule maps an HTTP method and path pattern to the roles allowed to
// reach it. A nil role set with Public=true grants anonymous access; an empty
// non-public rule admits any authenticated account. Path patterns are either
// exact or end in "/*", which matches any deeper path.
type PolicyRule struct {
	Method  string
	Pattern string
	Public  bool
	Roles   []domain.UserRole
}

// Policy is a static ordered access table consulted after the authentication
// filter has run. First matching rule wins; unmatched requests require an
// authenticated caller of any role.
//
// Patterns are compared against the literal request path, so the Fiber app
// must be built with CaseSensitive and StrictRouting enabled; otherwise the
// router would dispatch case or trailing-slash variants that no rule matches.
type Policy struct {
	rules []PolicyRule
}

// NewPolicy builds a policy from an ordered rule list.
func NewPolicy(rules []PolicyRule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy returns the access table for the API surface.
func DefaultPolicy() *Policy {
	elevated := []domain.UserRole{domain.RoleAdmin, domain.RoleManager}
	return NewPolicy([]PolicyRule{
		{Method: fiber.MethodPost, Pattern: "/api/v1/signUp", Public: true},
		{Method: fiber.MethodPost, Pattern: "/api/v1/signIn", Public: true},
		{Method: fiber.MethodGet, Pattern: "/health/live", Public: true},
		{Method: fiber.MethodGet, Pattern: "/health/ready", Public: true},
		{Method: fiber.MethodGet, Pattern: "/api/v1/products", Public: true},
		{Method: fiber.MethodGet, Pattern: "/api/v1/products/*", Public: true},
		{Method: fiber.MethodPost, Pattern: "/api/v1/products", Roles: elevated},
		{Method: fiber.MethodPut, Pattern: "/api/v1/products/*", Roles: elevated},
		{Method: fiber.MethodDelete, Pattern: "/api/v1/products/*", Roles: elevated},
		{Method: fiber.MethodPut, Pattern: "/api/v1/orders/*", Roles: elevated},
	})
}

// Handle enforces the policy for the current request. Anonymous callers on
// protected routes get 401; authenticated callers outside the required role
// set get 403.
func (p *Policy) Handle(c *fiber.Ctx) error {
	rule, matched := p.match(c.Method(), c.Path())
	if matched && rule.Public {
		return c.Next()
	}

	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if !matched || len(rule.Roles) == 0 {
		return c.Next()
	}

	for _, role := range rule.Roles {
		if principal.Role == role {
			return c.Next()
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

func (p *Policy) match(method, path string) (PolicyRule, bool) {
	for _, rule := range p.rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if matchPattern(rule.Pattern, path) {
			return rule, true
		}
	}
	return PolicyRule{}, false
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(path, prefix+"/") && len(path) > len(prefix)+1
	}
	return pattern == path
}
