package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-service/internal/domain"
	apperrors "github.com/spec-kit/classroom-service/pkg/util"
)

const claimsKey = "auth_claims"

const bearerPrefix = "Bearer "

// Middleware validates bearer tokens on protected routes.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate enforces a fresh token and attaches its claims to the
// request for downstream handlers.
func (m *Middleware) Authenticate(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return apperrors.NewMissingCredential()
	}

	token, ok := extractBearer(header)
	if !ok {
		return apperrors.NewMalformedCredential()
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return WireError(err)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// RequireRoles ensures the authenticated caller holds one of the allowed
// roles. Composed after Authenticate.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewMissingCredential()
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[claims.UserRole()]; !exists {
			return apperrors.NewInsufficientPrivilege()
		}
		return c.Next()
	}
}

// ClaimsFromContext retrieves the claims attached by Authenticate.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

// extractBearer strips the literal "Bearer " prefix and surrounding
// whitespace. A header without the prefix is malformed, not missing.
func extractBearer(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)), true
}
