package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"physiohub-gateway/internal/adapters/http/middleware"
	"physiohub-gateway/internal/adapters/http/routes"
	"physiohub-gateway/internal/adapters/persistence/models"
	"physiohub-gateway/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "physiohub-gateway/docs" // Swagger docs
)

// @title PhysioHub Session Gateway API
// @version 1.0
// @description Session, authentication and permission gateway for the PhysioHub practice front-end.

// @contact.name API Support
// @contact.email support@physiohub.example

// @host gateway.physiohub.example
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the gateway session token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to the session store
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to session store: %v", err)
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Session store migration completed")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PhysioHub Session Gateway",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes and wire the service graph
	background := routes.Setup(app, db, cfg)

	// Restart profile refresh loops for sessions that survived a restart
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := background.Profiles.Rehydrate(ctx); err != nil {
		log.Printf("⚠️ Warning: failed to rehydrate refresh loops: %v", err)
	}
	cancel()
	defer background.Profiles.Stop()

	// Nightly purge of expired sessions
	if err := background.Housekeeping.Start(); err != nil {
		log.Fatalf("❌ Failed to start housekeeping: %v", err)
	}
	defer background.Housekeeping.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Gateway starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down gateway...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Gateway stopped gracefully")
}
