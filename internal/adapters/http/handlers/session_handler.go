package handlers

import (
	"errors"

	"physiohub-gateway/internal/adapters/http/middleware"
	"physiohub-gateway/internal/core/domain"
	"physiohub-gateway/internal/core/services"
	"physiohub-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler answers the front-end's session, permission and
// navigation queries.
type SessionHandler struct {
	accessService  *services.AccessService
	profileService *services.ProfileService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(accessService *services.AccessService, profileService *services.ProfileService) *SessionHandler {
	return &SessionHandler{
		accessService:  accessService,
		profileService: profileService,
	}
}

// Me returns the current user snapshot
// @Summary Current session
// @Description Return the authenticated user restored from the session store
// @Tags Session
// @Accept json
// @Produce json
// @Security SessionAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /session [get]
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	return response.Success(c, "Session restored", fiber.Map{
		"user":       session.User,
		"expires_at": session.ExpiresAt,
	})
}

// Profile returns the role profile, fetching it on demand
// @Summary Role profile
// @Description Return the therapist role-profile, running the fallback chain if no copy is cached
// @Tags Session
// @Accept json
// @Produce json
// @Security SessionAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /session/profile [get]
func (h *SessionHandler) Profile(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, found, err := h.profileService.Ensure(c.Context(), session)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return response.Unauthorized(c, "Session rejected, please sign in again")
		}
		return response.BadGateway(c, "Could not reach the practice backend")
	}

	// No profile is not an error: the account simply has no role
	// extension record yet.
	if !found {
		return response.Success(c, "No role profile available", nil)
	}

	return response.Success(c, "Role profile retrieved", fiber.Map{
		"profile": profile,
	})
}

// Features returns the feature access map for the current role
// @Summary Feature access map
// @Description Return every known feature with the role's access decision
// @Tags Session
// @Accept json
// @Produce json
// @Security SessionAuth
// @Success 200 {object} response.Response
// @Router /session/features [get]
func (h *SessionHandler) Features(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	return response.Success(c, "Feature access computed", fiber.Map{
		"role":     session.Role(),
		"features": h.accessService.FeatureMap(session.User),
	})
}

// Navigation returns the menu entries for the current role
// @Summary Navigation menu
// @Description Return the static menu entries for the session's role
// @Tags Session
// @Accept json
// @Produce json
// @Security SessionAuth
// @Success 200 {object} response.Response
// @Router /session/navigation [get]
func (h *SessionHandler) Navigation(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	return response.Success(c, "Navigation composed", fiber.Map{
		"items": h.accessService.Navigation(session.User),
	})
}
