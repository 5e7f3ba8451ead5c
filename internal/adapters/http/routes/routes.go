package routes

import (
	"time"

	"loan-backend/internal/adapters/http/handlers"
	"loan-backend/internal/adapters/http/middleware"
	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/config"
	"loan-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps carries what the routes need from main
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *logrus.Logger
	// Idempotency is nil when Redis is not configured
	Idempotency middleware.IdempotencyStore
	// Now is the clock used by loan dates; nil means time.Now
	Now func() time.Time
	// DBCheck pings the database for /health
	DBCheck func() error
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps Deps) {
	// Initialize repositories
	loanStore := repositories.NewLoanStore(deps.DB)
	customerRepo := repositories.NewCustomerRepository(deps.DB)
	userRepo := repositories.NewUserRepository(deps.DB)

	// Initialize services
	loanService := services.NewLoanService(loanStore, deps.Log, deps.Now)
	customerService := services.NewCustomerService(customerRepo, deps.Log)
	authService := services.NewAuthService(userRepo, deps.Config.JWT, deps.Log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.Config.AppMode, deps.DBCheck)
	authHandler := handlers.NewAuthHandler(authService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	loanHandler := handlers.NewLoanHandler(loanService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1", middleware.NoCacheHeaders())

	// Public
	auth := api.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)

	// Protected
	requireAuth := middleware.AuthMiddleware(deps.Config.JWT.Secret)

	customers := api.Group("/customers", requireAuth)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)

	idempotent := middleware.Idempotency(deps.Idempotency, deps.Log)

	loans := api.Group("/loans", requireAuth)
	loans.Post("/", idempotent, loanHandler.CreateLoan)
	loans.Get("/", loanHandler.ListLoans)
	loans.Get("/:id/installments", loanHandler.ListInstallments)
	loans.Post("/:id/pay", idempotent, loanHandler.PayLoan)
}
