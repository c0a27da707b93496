package routes

import (
	"time"

	"guarantee-tracker/internal/adapters/http/handlers"
	"guarantee-tracker/internal/adapters/http/middleware"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/config"
	"guarantee-tracker/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Services bundles the application services built over one database
type Services struct {
	Auth      *services.AuthService
	User      *services.UserService
	Guarantee *services.GuaranteeService
	Dashboard *services.DashboardService
	BankLimit *services.BankLimitService
	Report    *services.ReportService
	Sync      *services.SyncService
}

// NewServices initializes repositories and services
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	guaranteeRepo := repositories.NewGuaranteeRepository(db)
	bankLimitRepo := repositories.NewBankLimitRepository(db)
	syncRepo := repositories.NewSyncRepository(db)

	return &Services{
		Auth:      services.NewAuthService(userRepo, refreshTokenRepo, cfg),
		User:      services.NewUserService(userRepo, refreshTokenRepo),
		Guarantee: services.NewGuaranteeService(guaranteeRepo),
		Dashboard: services.NewDashboardService(guaranteeRepo),
		BankLimit: services.NewBankLimitService(bankLimitRepo, guaranteeRepo),
		Report:    services.NewReportService(guaranteeRepo),
		Sync:      services.NewSyncService(syncRepo),
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, svc *Services, cfg *config.Config) {
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.User)
	guaranteeHandler := handlers.NewGuaranteeHandler(svc.Guarantee)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard, svc.BankLimit, svc.Report)
	bankLimitHandler := handlers.NewBankLimitHandler(svc.BankLimit)
	syncHandler := handlers.NewSyncHandler(svc.Sync)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", middleware.CacheControl(10*time.Minute), swagger.HandlerDefault)

	// Desktop sync (API key)
	app.Post("/api/sync", middleware.SyncAPIKey(cfg), syncHandler.Sync)

	apiV1 := app.Group("/api/v1", middleware.NoStore())
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)

	auth := middleware.AuthMiddleware(cfg)

	setupGuaranteeRoutes(apiV1.Group("/guarantees", auth), guaranteeHandler)
	apiV1.Get("/dashboard", auth, dashboardHandler.GetDashboard)
	setupReportRoutes(apiV1.Group("/reports", auth), dashboardHandler)
	apiV1.Put("/profile/password", auth, userHandler.ChangePassword)

	// Settings routes (Admin only)
	settings := apiV1.Group("/settings", auth, middleware.AdminOnly())
	setupSettingsRoutes(settings, userHandler, bankLimitHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupGuaranteeRoutes configures guarantee routes
func setupGuaranteeRoutes(router fiber.Router, handler *handlers.GuaranteeHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Post("/bulk", handler.Bulk)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Get("/:id/attachments", handler.Attachments)
}

// setupReportRoutes configures report routes
func setupReportRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/bank-limits", handler.GetBankLimitReport)
	router.Get("/departments", handler.ListDepartments)
	router.Get("/departments/:name", handler.GetDepartmentStatement)
}

// setupSettingsRoutes configures admin settings (Admin only)
func setupSettingsRoutes(router fiber.Router, users *handlers.UserHandler, limits *handlers.BankLimitHandler) {
	router.Get("/users", users.ListUsers)
	router.Get("/users/pending", users.ListPending)
	router.Post("/users/:id/approve", users.Approve)
	router.Put("/users/:id/role", users.SetUserRole)
	router.Put("/users/:id/active", users.SetUserActive)
	router.Post("/users/:id/reset-password", users.ResetPassword)
	router.Delete("/users/:id", users.DeleteUser)

	router.Get("/bank-limits", limits.List)
	router.Put("/bank-limits", limits.Upsert)
	router.Delete("/bank-limits/:id", limits.Delete)
}
