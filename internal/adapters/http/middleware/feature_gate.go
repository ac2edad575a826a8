package middleware

import (
	"errors"

	"physiohub-gateway/internal/core/domain"
	"physiohub-gateway/internal/core/services"
	"physiohub-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireFeature gates a route on a feature decision. A pending decision
// (approval-gated feature without a cached profile) is settled inside the
// request with a one-shot profile fetch. The protected handler is never
// invoked unless the decision settles to allowed — a denied or still
// pending decision always stops here.
func RequireFeature(access *services.AccessService, profiles *services.ProfileService, feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromCtx(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		decision := access.Decide(session, feature)

		if decision == services.DecisionPending {
			if _, _, err := profiles.Ensure(c.Context(), session); err != nil {
				if errors.Is(err, domain.ErrSessionInvalid) {
					return response.Unauthorized(c, "Session rejected, please sign in again")
				}
				return response.ServiceUnavailable(c, "Access check unavailable, please try again")
			}
			decision = access.Decide(session, feature)
		}

		if decision != services.DecisionAllowed {
			if !access.CanAccessFeature(session.User, feature) {
				return response.Forbidden(c, "You don't have permission to access this feature")
			}
			return response.Forbidden(c, "This feature is pending approval for your account")
		}

		return c.Next()
	}
}
