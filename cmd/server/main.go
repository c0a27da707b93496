package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"guarantee-tracker/internal/adapters/http/middleware"
	"guarantee-tracker/internal/adapters/http/routes"
	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/config"
	"guarantee-tracker/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "guarantee-tracker/docs" // Swagger docs
)

// syncBodyLimit bounds one request body; a full desktop push is a single request
const syncBodyLimit = 64 * 1024 * 1024

// @title Guarantee Tracker API
// @version 1.0
// @description Bank guarantee tracker: dashboard, bank limits, department reports and desktop sync.

// @contact.name API Support

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey SyncKey
// @in header
// @name X-API-Key

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Bootstrap admin and default bank rows
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Fatalf("❌ Failed to seed database: %v", err)
	}

	svc := routes.NewServices(db, cfg)

	// Expiry digest and token cleanup
	cronService := services.NewCronService(svc.Dashboard, svc.Auth, cfg.Digest)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Guarantee Tracker API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    syncBodyLimit,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, db, svc, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
