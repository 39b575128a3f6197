package routes

import (
	"farm-feed/internal/adapters/http/handlers"
	"farm-feed/internal/adapters/http/middleware"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/config"
	"farm-feed/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	productRepo := repositories.NewProductRepository(db)
	listingRepo := repositories.NewListingRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	dealRepo := repositories.NewDealRepository(db)
	transportRepo := repositories.NewTransportRepository(db)
	ficaRepo := repositories.NewFicaRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	outboxRepo := repositories.NewOutboxRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo)
	listingService := services.NewListingService(listingRepo, productRepo, userRepo)
	offerService := services.NewOfferService(db, offerRepo, listingRepo, dealRepo, notificationRepo, outboxRepo, userRepo)
	dealService := services.NewDealService(db, dealRepo, userRepo, notificationRepo, outboxRepo)
	transportService := services.NewTransportService(db, transportRepo, dealRepo, userRepo, notificationRepo, outboxRepo)
	subscriptionService := services.NewSubscriptionService(userRepo, listingRepo, offerRepo, transportRepo)
	ficaService := services.NewFicaService(ficaRepo, userRepo)
	notificationService := services.NewNotificationService(notificationRepo, dealRepo, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	listingHandler := handlers.NewListingHandler(listingService)
	offerHandler := handlers.NewOfferHandler(offerService)
	dealHandler := handlers.NewDealHandler(dealService)
	transportHandler := handlers.NewTransportHandler(transportService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	ficaHandler := handlers.NewFicaHandler(ficaService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Health check
	app.Get("/health", healthHandler.Check)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Profile routes (authenticated users)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// User management routes (admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Product catalogue routes (public reads, admin writes)
	productRoutes := apiV1.Group("/products")
	setupProductRoutes(productRoutes, productHandler, cfg)

	// Listing routes
	listingRoutes := apiV1.Group("/listings")
	setupListingRoutes(listingRoutes, listingHandler, cfg)

	// Offer routes (authenticated users)
	offerRoutes := apiV1.Group("/offers")
	offerRoutes.Use(middleware.AuthMiddleware(cfg))
	setupOfferRoutes(offerRoutes, offerHandler)

	// Deal routes, including deal chat (authenticated users)
	dealRoutes := apiV1.Group("/deals")
	dealRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDealRoutes(dealRoutes, dealHandler, notificationHandler)

	// Transport routes (authenticated users)
	transportRoutes := apiV1.Group("/transport")
	transportRoutes.Use(middleware.AuthMiddleware(cfg))
	setupTransportRoutes(transportRoutes, transportHandler)

	// Subscription routes
	subscriptionRoutes := apiV1.Group("/subscription")
	setupSubscriptionRoutes(subscriptionRoutes, subscriptionHandler, cfg)

	// FICA routes (authenticated users, admin review subgroup)
	ficaRoutes := apiV1.Group("/fica")
	ficaRoutes.Use(middleware.AuthMiddleware(cfg))
	setupFicaRoutes(ficaRoutes, ficaHandler)

	// Notification routes (authenticated users)
	notificationRoutes := apiV1.Group("/notifications")
	notificationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupNotificationRoutes(notificationRoutes, notificationHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (5 req/min/IP on credential endpoints)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupProfileRoutes configures profile routes (authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
	router.Post("/roles", handler.AddRoles)
}

// setupUserRoutes configures user management routes (admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id/active", handler.SetUserActive)
}

// setupProductRoutes configures catalogue routes
func setupProductRoutes(router fiber.Router, handler *handlers.ProductHandler, cfg *config.Config) {
	// Public reads, catalogue changes rarely
	router.Get("/", middleware.CatalogueCache(), handler.List)
	router.Get("/:id", middleware.CatalogueCache(), handler.Get)

	// Admin writes
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/", handler.Create)
	adminRoutes.Put("/:id", handler.Update)
	adminRoutes.Delete("/:id", handler.Deactivate)
}

// setupListingRoutes configures listing routes
func setupListingRoutes(router fiber.Router, handler *handlers.ListingHandler, cfg *config.Config) {
	// Public browse
	router.Get("/", handler.List)

	// Protected routes. "/mine" must register before "/:id".
	router.Get("/mine", middleware.AuthMiddleware(cfg), handler.ListMine)
	router.Get("/:id", handler.Get)
	router.Post("/", middleware.AuthMiddleware(cfg), handler.Create)
	router.Put("/:id", middleware.AuthMiddleware(cfg), handler.Update)
	router.Delete("/:id", middleware.AuthMiddleware(cfg), handler.Deactivate)
}

// setupOfferRoutes configures offer and negotiation routes
func setupOfferRoutes(router fiber.Router, handler *handlers.OfferHandler) {
	router.Post("/", handler.Create)
	router.Get("/sent", handler.ListSent)
	router.Get("/received", handler.ListReceived)
	router.Get("/:id", handler.Get)
	router.Get("/:id/history", handler.History)
	router.Post("/:id/counter", handler.Counter)
	router.Post("/:id/reject", handler.Reject)
	router.Post("/:id/accept", handler.Accept)
}

// setupDealRoutes configures deal lifecycle and chat routes
func setupDealRoutes(router fiber.Router, handler *handlers.DealHandler, notificationHandler *handlers.NotificationHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Get("/:id/events", handler.Events)
	router.Post("/:id/advance", handler.Advance)
	router.Post("/:id/pay", handler.MarkPaid)
	router.Post("/:id/cancel", handler.Cancel)

	// Deal chat
	router.Get("/:id/messages", notificationHandler.ListMessages)
	router.Post("/:id/messages", notificationHandler.SendMessage)
}

// setupTransportRoutes configures transport request and quote routes
func setupTransportRoutes(router fiber.Router, handler *handlers.TransportHandler) {
	router.Post("/requests", handler.CreateRequest)
	router.Get("/requests", handler.ListOpenRequests)
	router.Get("/requests/mine", handler.ListMyRequests)
	router.Get("/requests/:id", handler.GetRequest)
	router.Post("/requests/:id/cancel", handler.CancelRequest)
	router.Post("/requests/:id/quotes", handler.CreateQuote)
	router.Post("/requests/:id/start", handler.StartTransport)
	router.Post("/requests/:id/complete", handler.CompleteTransport)

	router.Get("/quotes/mine", handler.ListMyQuotes)
	router.Post("/quotes/:id/accept", handler.AcceptQuote)
}

// setupSubscriptionRoutes configures subscription routes
func setupSubscriptionRoutes(router fiber.Router, handler *handlers.SubscriptionHandler, cfg *config.Config) {
	// Public plan table
	router.Get("/plans", middleware.CatalogueCache(), handler.GetPlans)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.GetMyPlan)
	router.Put("/plan", middleware.AuthMiddleware(cfg), handler.ChangePlan)
	router.Get("/usage", middleware.AuthMiddleware(cfg), handler.GetUsage)
}

// setupFicaRoutes configures compliance routes
func setupFicaRoutes(router fiber.Router, handler *handlers.FicaHandler) {
	router.Post("/documents", handler.Upload)
	router.Get("/documents", handler.ListMine)
	router.Get("/report", handler.Report)

	// Admin review
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/pending", handler.ListPending)
	adminRoutes.Post("/documents/:id/verify", handler.Verify)
	adminRoutes.Post("/documents/:id/reject", handler.Reject)
}

// setupNotificationRoutes configures notification routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.List)
	router.Get("/unread-count", handler.UnreadCount)
	router.Post("/read-all", handler.MarkAllRead)
	router.Post("/:id/read", handler.MarkRead)
}
