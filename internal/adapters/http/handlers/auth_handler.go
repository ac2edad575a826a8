package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"physiohub-gateway/internal/adapters/http/middleware"
	"physiohub-gateway/internal/config"
	"physiohub-gateway/internal/core/domain"
	"physiohub-gateway/internal/core/services"
	"physiohub-gateway/internal/pkg/response"
	"physiohub-gateway/internal/pkg/sessiontoken"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginRequest represents login request body. Identifier may be an
// email, a phone number or a username; classification happens in the
// service.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// ResetPasswordRequest represents reset request body
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// Login handles user login
// @Summary Sign in
// @Description Authenticate against the practice backend and open a gateway session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Identifier) == "" {
		return response.BadRequest(c, "Email, phone or username is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	result, err := h.authService.Login(c.Context(), strings.TrimSpace(req.Identifier), req.Password)
	if err != nil {
		return h.respondAuthError(c, err)
	}

	token, err := sessiontoken.Generate(result.Session.ID, h.cfg.Session.Secret, h.cfg.Session.TTL)
	if err != nil {
		return response.InternalServerError(c, "Failed to open session")
	}
	h.setSessionCookie(c, token)

	return response.Success(c, "Login successful", fiber.Map{
		"user":     result.Session.User,
		"redirect": result.Redirect,
	})
}

// Logout handles user logout
// @Summary Sign out
// @Description Revoke the upstream refresh token (best effort) and destroy the session
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	// The cookie is cleared first, unconditionally: the browser ends up
	// signed out even when the store teardown below fails.
	h.clearSessionCookie(c)

	if session, ok := middleware.SessionFromCtx(c); ok {
		if err := h.authService.Logout(c.Context(), session); err != nil {
			return response.InternalServerError(c, "Failed to close session")
		}
	}

	return response.Success(c, "Logged out successfully", nil)
}

// Register handles signup passthrough
// @Summary Register
// @Description Forward a registration payload to the practice backend
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Register(c.Context(), json.RawMessage(body))
	if err != nil {
		return h.respondAuthError(c, err)
	}

	return response.Created(c, "Registration submitted", result)
}

// ResetPassword handles password reset requests
// @Summary Reset password
// @Description Request a password reset email from the practice backend
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return response.BadRequest(c, "Email is required")
	}

	if err := h.authService.ResetPassword(c.Context(), strings.TrimSpace(req.Email)); err != nil {
		return h.respondAuthError(c, err)
	}

	return response.Success(c, "Password reset requested", nil)
}

// UpdateProfile handles identity record updates
// @Summary Update profile
// @Description Update the authenticated user's identity record upstream
// @Tags Auth
// @Accept json
// @Produce json
// @Security SessionAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.authService.UpdateProfile(c.Context(), session, json.RawMessage(body))
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			h.clearSessionCookie(c)
			return response.Unauthorized(c, "Session rejected, please sign in again")
		}
		return h.respondAuthError(c, err)
	}

	return response.Success(c, "Profile updated", fiber.Map{
		"user": user,
	})
}

// respondAuthError renders a classified authentication failure with its
// user-facing message, falling back to a generic 500.
func (h *AuthHandler) respondAuthError(c *fiber.Ctx, err error) error {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return response.Error(c, authErr.Status, authErr.Message)
	}
	return response.InternalServerError(c, "Something went wrong, please try again")
}

// setSessionCookie sets the gateway session cookie
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Session.TTL.Seconds()),
		Secure:   h.cfg.Session.CookieSecure,
		HTTPOnly: true,
		SameSite: h.cfg.Session.SameSite,
		Domain:   h.cfg.Session.Domain,
	})
}

// clearSessionCookie clears the gateway session cookie
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Session.CookieSecure,
		HTTPOnly: true,
		SameSite: h.cfg.Session.SameSite,
		Domain:   h.cfg.Session.Domain,
	})
}
