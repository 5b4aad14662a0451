package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trendmart/storefront/internal/domain/auth"
)

// identityKey is the echo context key holding the authenticated identity.
const identityKey = "identity"

// Security provides the authentication middleware of the API.
type Security struct {
	tokens *auth.TokenService
}

// NewSecurity creates the Security middleware set.
func NewSecurity(tokens *auth.TokenService) *Security {
	return &Security{tokens: tokens}
}

// Authenticate validates the bearer token and stores the resulting identity
// on the request context.
func (s *Security) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return writeError(c, http.StatusUnauthorized, "authorization header required")
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return writeError(c, http.StatusUnauthorized, "bearer token required")
		}

		ident, err := s.tokens.Verify(token)
		if err != nil {
			return writeError(c, http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(identityKey, *ident)
		return next(c)
	}
}

// RequireAdmin rejects identities without the admin role. It must run after
// Authenticate.
func (s *Security) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := c.Get(identityKey).(auth.Identity)
		if !ok || !ident.IsAdmin() {
			return writeError(c, http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

// identityFrom returns the identity stored by Authenticate.
func identityFrom(c echo.Context) auth.Identity {
	ident, _ := c.Get(identityKey).(auth.Identity)
	return ident
}
