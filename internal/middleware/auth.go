package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/corpdir/api/internal/domain"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// ContextKey type for context keys
type ContextKey string

const (
	// Context keys
	ContextKeyClaims    ContextKey = "claims"
	ContextKeyRequestID ContextKey = "requestID"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*domain.JWTClaims, error)
}

// AuthMiddleware handles authentication
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// RequireJWT validates JWT authentication
func (m *AuthMiddleware) RequireJWT() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return apperrors.Unauthorized("Authorization header required")
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			return apperrors.Unauthorized("Invalid or expired token")
		}

		c.Locals(string(ContextKeyClaims), claims)
		return c.Next()
	}
}

// RequireRole lets the request through only when the authenticated user has
// one of roles. It must run after RequireJWT.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := GetClaims(c)
		if !ok {
			return apperrors.Unauthorized("User not authenticated")
		}

		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}
		return apperrors.Forbidden("Insufficient permissions")
	}
}

// OptionalAuth tries to authenticate but continues even if it fails
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := extractBearerToken(c); token != "" {
			if claims, err := m.tokens.ValidateToken(token); err == nil {
				c.Locals(string(ContextKeyClaims), claims)
			}
		}
		return c.Next()
	}
}

// extractBearerToken extracts JWT from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// GetClaims gets the token claims from context
func GetClaims(c *fiber.Ctx) (*domain.JWTClaims, bool) {
	claims, ok := c.Locals(string(ContextKeyClaims)).(*domain.JWTClaims)
	return claims, ok && claims != nil
}

// GetUserID gets the authenticated user id from context
func GetUserID(c *fiber.Ctx) (int, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
