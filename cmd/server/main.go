package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"farm-feed/internal/adapters/http/middleware"
	"farm-feed/internal/adapters/http/routes"
	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/config"
	"farm-feed/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title Farm Feed API
// @version 1.0
// @description South African agricultural marketplace API: listings, offers, deals, transport and FICA compliance.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@farmfeed.co.za

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.farmfeed.co.za
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	// Seed the product catalogue
	if err := config.SeedMasterData(db); err != nil {
		log.Printf("⚠️ Warning: Failed to seed master data: %v", err)
	}

	// Background workers share the route repositories' tables but own
	// their instances.
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	listingRepo := repositories.NewListingRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	outboxRepo := repositories.NewOutboxRepository(db)

	// Outbox dispatcher delivers queued side effects (email fan-out)
	emailService := services.NewEmailService(cfg)
	outboxService := services.NewOutboxService(db, outboxRepo, userRepo, emailService)
	outboxService.Start()
	defer outboxService.Stop()

	// Expiry scheduler sweeps stale offers, listings and tokens
	expiryService := services.NewExpiryService(db, offerRepo, listingRepo, refreshTokenRepo, notificationRepo, outboxRepo)
	if err := expiryService.Start(); err != nil {
		log.Fatalf("❌ Failed to start expiry scheduler: %v", err)
	}
	defer expiryService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Farm Feed API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
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
