package testutil

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/middleware"
)

// TestClaimsMiddleware creates a middleware that authenticates every request
// as the given user. Use this in tests to skip token handling.
func TestClaimsMiddleware(userID int, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(string(middleware.ContextKeyClaims), &domain.JWTClaims{
			UserID: userID,
			Role:   role,
		})
		return c.Next()
	}
}

// StaticTokens is a middleware.TokenValidator that accepts a fixed set of
// tokens
type StaticTokens map[string]*domain.JWTClaims

// ValidateToken implements middleware.TokenValidator
func (s StaticTokens) ValidateToken(token string) (*domain.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, fiber.ErrUnauthorized
}
