package routes

import (
	"physiohub-gateway/internal/adapters/http/handlers"
	"physiohub-gateway/internal/adapters/http/middleware"
	"physiohub-gateway/internal/adapters/persistence/repositories"
	"physiohub-gateway/internal/adapters/upstream"
	"physiohub-gateway/internal/config"
	"physiohub-gateway/internal/core/domain"
	"physiohub-gateway/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Background holds the long-running services main must start and stop
// alongside the HTTP server.
type Background struct {
	Profiles     *services.ProfileService
	Housekeeping *services.HousekeepingService
}

// Setup configures all routes for the gateway and wires the service
// graph. The returned background services are started by main.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *Background {
	// Repositories
	sessionRepo := repositories.NewSessionRepository(db)

	// Upstream client for the practice backend
	upstreamClient := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)

	// Services
	sessionService := services.NewSessionService(sessionRepo, cfg.Session.TTL)
	profileService := services.NewProfileService(upstreamClient, sessionService, cfg.Profile.RefreshInterval)
	authService := services.NewAuthService(upstreamClient, sessionService, profileService)
	accessService := services.NewAccessService()
	auditService := services.NewAuditService(upstreamClient)
	housekeepingService := services.NewHousekeepingService(sessionService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(sessionService)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	sessionHandler := handlers.NewSessionHandler(accessService, profileService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes: login/register/reset are public, the rest need a
	// session. Auth endpoints get the stricter limiter.
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/reset-password", middleware.AuthRateLimiter(), authHandler.ResetPassword)
	authRoutes.Post("/logout", middleware.RequireSession(cfg, sessionService), authHandler.Logout)
	authRoutes.Put("/profile", middleware.RequireSession(cfg, sessionService), authHandler.UpdateProfile)

	// Session queries
	sessionRoutes := apiV1.Group("/session")
	sessionRoutes.Use(middleware.RequireSession(cfg, sessionService))
	sessionRoutes.Get("/", sessionHandler.Me)
	sessionRoutes.Get("/profile", sessionHandler.Profile)
	sessionRoutes.Get("/features", sessionHandler.Features)
	sessionRoutes.Get("/navigation", sessionHandler.Navigation)

	// Audit-log viewer (admin only, feature gated)
	auditRoutes := apiV1.Group("/audit-logs")
	auditRoutes.Use(middleware.RequireSession(cfg, sessionService))
	auditRoutes.Use(middleware.RequireRole(domain.RoleAdmin))
	auditRoutes.Use(middleware.RequireFeature(accessService, profileService, domain.FeatureAuditLogs))
	auditRoutes.Get("/", auditHandler.List)

	return &Background{
		Profiles:     profileService,
		Housekeeping: housekeepingService,
	}
}
