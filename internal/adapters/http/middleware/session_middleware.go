package middleware

import (
	"errors"
	"strings"

	"physiohub-gateway/internal/config"
	"physiohub-gateway/internal/core/domain"
	"physiohub-gateway/internal/core/services"
	"physiohub-gateway/internal/pkg/response"
	"physiohub-gateway/internal/pkg/sessiontoken"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireSession.
const (
	SessionKey = "session"
	RoleKey    = "role"
)

// RequireSession restores the caller's session from the store. The
// session token comes from the cookie first, then the Authorization
// header. Restoration is purely local — no upstream round-trip.
func RequireSession(cfg *config.Config, sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string

		// 1. Try to get the session token from the cookie first
		token = c.Cookies(cfg.Session.CookieName)

		// 2. If not in cookie, try Authorization header
		if token == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if token == "" {
			return response.Unauthorized(c, "Session token required")
		}

		// 4. Validate token
		claims, err := sessiontoken.Parse(token, cfg.Session.Secret)
		if err != nil {
			if errors.Is(err, sessiontoken.ErrTokenExpired) {
				return response.Unauthorized(c, "Session expired, please sign in again")
			}
			return response.Unauthorized(c, "Invalid session token")
		}

		// 5. Restore the session from the store
		session, err := sessions.Get(c.Context(), claims.SessionID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNoSession):
				return response.Unauthorized(c, "No active session, please sign in")
			case errors.Is(err, domain.ErrSessionExpired):
				return response.Unauthorized(c, "Session expired, please sign in again")
			default:
				return response.InternalServerError(c, "Failed to restore session")
			}
		}

		// 6. Set session info in context
		c.Locals(SessionKey, session)
		c.Locals(RoleKey, session.Role())

		return c.Next()
	}
}

// SessionFromCtx returns the session stored by RequireSession.
func SessionFromCtx(c *fiber.Ctx) (*domain.Session, bool) {
	session, ok := c.Locals(SessionKey).(*domain.Session)
	return session, ok
}

// RequireRole creates role-based authorization middleware
func RequireRole(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(RoleKey).(domain.Role)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
