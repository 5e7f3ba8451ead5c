package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-backend/internal/adapters/cache"
	"loan-backend/internal/adapters/http/middleware"
	"loan-backend/internal/adapters/http/routes"
	"loan-backend/internal/adapters/persistence/models"
	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/config"
	"loan-backend/internal/core/services"
	"loan-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	_ "loan-backend/docs" // Swagger docs
)

// @title Loan API
// @version 1.0
// @description Customers take loans against a credit limit and pay them off in installments.

// @contact.name API Support
// @contact.email support@example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.AppMode, cfg.LogLevel)

	// runs after every other deferred cleanup
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()
	log.WithField("database", cfg.Database.Describe()).Info("Database connected")

	if err := models.AutoMigrate(db); err != nil {
		log.WithError(err).Error("Failed to auto migrate")
		exitCode = 1
		return
	}
	log.Info("Database migration completed")

	if err := config.NewSeeder(db, cfg, log).Run(); err != nil {
		log.WithError(err).Error("Failed to seed database")
		exitCode = 1
		return
	}

	// Installment reminders
	if cfg.Reminder.Enabled {
		var notifier services.Notifier = services.NewLogNotifier(log)
		if cfg.SMTP.Enabled() {
			notifier = services.NewEmailNotifier(cfg.SMTP, log)
		}
		reminders := services.NewReminderService(
			repositories.NewInstallmentRepository(db),
			notifier,
			cfg.Reminder,
			log,
			nil,
		)
		if err := reminders.Start(); err != nil {
			log.WithError(err).Error("Failed to start reminders")
			exitCode = 1
		return
		}
		defer reminders.Stop()
	}

	// Idempotency-Key replay needs Redis
	var idempotency middleware.IdempotencyStore
	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.WithError(err).Error("Failed to connect to redis")
			exitCode = 1
		return
		}
		defer client.Close()
		idempotency = cache.NewIdempotencyStore(client, time.Duration(cfg.Redis.KeyTTLMins)*time.Minute)
		log.WithField("addr", cfg.Redis.Addr).Info("Idempotency store enabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Loan API v1.0",
		ErrorHandler: middleware.NewErrorHandler(log),
	})

	middleware.Setup(app, cfg, log)

	routes.Setup(app, routes.Deps{
		DB:          db,
		Config:      cfg,
		Log:         log,
		Idempotency: idempotency,
		DBCheck:     config.HealthCheck,
	})

	go gracefulShutdown(app, log)

	log.WithField("mode", cfg.AppMode).Infof("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("Failed to start server")
		exitCode = 1
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}
	log.Info("Server stopped gracefully")
}
