package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"physiohub-gateway/internal/config"
	"physiohub-gateway/internal/core/domain"
	"physiohub-gateway/internal/core/services"
	"physiohub-gateway/internal/pkg/sessiontoken"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionFixture(t *testing.T) (*fiber.App, *config.Config, *services.SessionService) {
	t.Helper()

	cfg := &config.Config{
		Session: config.SessionConfig{
			Secret:     "test-secret",
			CookieName: "ph_session",
		},
	}
	sessions := services.NewSessionService(newMemSessionRepo(), time.Hour)

	app := fiber.New()
	app.Get("/me", RequireSession(cfg, sessions), func(c *fiber.Ctx) error {
		session, _ := SessionFromCtx(c)
		return c.SendString(string(session.Role()))
	})

	return app, cfg, sessions
}

func signedCookie(t *testing.T, cfg *config.Config, sessionID string) *http.Cookie {
	t.Helper()
	token, err := sessiontoken.Generate(sessionID, cfg.Session.Secret, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: cfg.Session.CookieName, Value: token}
}

func TestRequireSessionFromCookie(t *testing.T) {
	app, cfg, sessions := newSessionFixture(t)

	session, err := sessions.Create(context.Background(), "a", "r", &domain.User{ID: 1, Role: domain.RoleTherapist})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(signedCookie(t, cfg, session.ID))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireSessionFromBearerHeader(t *testing.T) {
	app, cfg, sessions := newSessionFixture(t)

	session, err := sessions.Create(context.Background(), "a", "r", &domain.User{ID: 1, Role: domain.RolePatient})
	require.NoError(t, err)

	token, err := sessiontoken.Generate(session.ID, cfg.Session.Secret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireSessionMissingToken(t *testing.T) {
	app, _, _ := newSessionFixture(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSessionBadSignature(t *testing.T) {
	app, cfg, sessions := newSessionFixture(t)

	session, err := sessions.Create(context.Background(), "a", "r", &domain.User{ID: 1, Role: domain.RolePatient})
	require.NoError(t, err)

	forged, err := sessiontoken.Generate(session.ID, "wrong-secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: cfg.Session.CookieName, Value: forged})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSessionRowGone(t *testing.T) {
	// A valid cookie whose backing row was destroyed (logout elsewhere)
	// must not authenticate.
	app, cfg, sessions := newSessionFixture(t)

	session, err := sessions.Create(context.Background(), "a", "r", &domain.User{ID: 1, Role: domain.RolePatient})
	require.NoError(t, err)
	require.NoError(t, sessions.Destroy(context.Background(), session.ID))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(signedCookie(t, cfg, session.ID))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app, cfg, sessions := newSessionFixture(t)
	app.Get("/admin", RequireSession(cfg, sessions), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	admin, err := sessions.Create(context.Background(), "a", "r", &domain.User{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)
	patient, err := sessions.Create(context.Background(), "a", "r", &domain.User{ID: 2, Role: domain.RolePatient})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(signedCookie(t, cfg, admin.ID))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(signedCookie(t, cfg, patient.ID))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
