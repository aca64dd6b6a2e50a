package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/api/handlers"
	"github.com/havenhq/haven/backend/internal/api/middleware"
	"github.com/havenhq/haven/backend/internal/config"
	"github.com/havenhq/haven/backend/internal/metrics"
	"github.com/havenhq/haven/backend/internal/models"
	"github.com/havenhq/haven/backend/internal/services"
)

// Register wires up routes, performs automatic migrations, ensures the root
// admin exists, and starts the hourly session sweep.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLogEntry{},
		&models.Guest{},
		&models.Stay{},
		&models.Meal{},
		&models.Medication{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := services.EnsureRootAdmin(db); err != nil {
		return fmt.Errorf("ensure root admin: %w", err)
	}

	// Services
	sessions := services.NewSessionManager(services.NewGormSessionStore(db), cfg.SessionLifetime, cfg.SessionSecret)
	audit := services.NewAuditService(db)
	notify := services.NewNotifyService(cfg.NotifyURL)
	authService := services.NewAuthService(db, sessions, audit, notify)

	// Expired sessions are treated as absent on every read; the sweep only
	// reclaims storage.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@hourly", sessions.SweepExpired); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	sweeper.Start()

	// Metrics
	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	// Login surface
	authHandler := handlers.NewAuthHandler(authService, cfg.SessionCookieName, cfg.IsProduction())
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	api := router.Group("/api/v1")

	protected := api.Group("/")
	protected.Use(middleware.RequireLogin(sessions, cfg.SessionCookieName))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/flash", authHandler.Flash)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		guestHandler := handlers.NewGuestHandler(db, audit)
		guestHandler.RegisterRoutes(protected)

		stayHandler := handlers.NewStayHandler(db, audit)
		stayHandler.RegisterRoutes(protected)

		mealHandler := handlers.NewMealHandler(db, audit)
		mealHandler.RegisterRoutes(protected)

		admin := protected.Group("/")
		admin.Use(middleware.RequireRole(sessions, models.RoleAdministrator))
		{
			userHandler := handlers.NewUserHandler(authService, cfg.IsProduction())
			userHandler.RegisterRoutes(admin)

			medicationHandler := handlers.NewMedicationHandler(db, audit)
			medicationHandler.RegisterRoutes(admin)

			auditHandler := handlers.NewAuditHandler(audit)
			admin.GET("/audit", auditHandler.List)
		}
	}

	return nil
}
