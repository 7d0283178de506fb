package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Register login/setup routes when passcode auth is enabled
	if cfg.AuthConfig.Mode == config.AuthModePasscode {
		authController := auth.NewController(cfg.Settings, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	// Create controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	books := NewBooksController(cfg.Library)
	members := NewMembersController(cfg.Library)
	loans := NewLoansController(cfg.Library)
	reservations := NewReservationsController(cfg.Library)
	dashboard := NewDashboardController(cfg.Library)
	backup := NewBackupController(cfg.Library, cfg.Auditor)
	calendar := NewCalendarController(cfg.Library)
	settings := NewSettingsController(cfg.Settings, cfg.Scheduler, cfg.AuthConfig)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Catalog endpoints
	router.GET("/api/books", books.List)
	router.GET("/api/books/:id", books.Get)
	router.POST("/api/books", books.Create)
	router.PUT("/api/books/:id", books.Update)
	router.DELETE("/api/books/:id", books.Delete)
	router.GET("/api/barcode/:code", books.ByBarcode)

	// Membership endpoints
	router.GET("/api/members", members.List)
	router.GET("/api/members/:id", members.Get)
	router.POST("/api/members", members.Create)
	router.PUT("/api/members/:id", members.Update)
	router.DELETE("/api/members/:id", members.Delete)

	// Lending endpoints
	router.GET("/api/loans", loans.List)
	router.POST("/api/loans", loans.Borrow)
	router.POST("/api/returns", loans.Return)

	// Reservation endpoints
	router.GET("/api/reservations", reservations.List)
	router.POST("/api/reservations", reservations.Create)

	// Dashboard endpoints
	router.GET("/api/dashboard", dashboard.Stats)
	router.GET("/api/activity", dashboard.Activity)

	// Backup endpoints
	router.GET("/api/backup/export", backup.Export)
	router.POST("/api/backup/import", backup.Import)

	// Calendar export
	router.GET("/api/calendar.ics", calendar.Export)

	// Settings endpoints
	router.GET("/api/settings", settings.Get)
	router.PUT("/api/settings/theme", settings.UpdateTheme)
	router.PUT("/api/settings/autosave", settings.UpdateAutosave)
	router.POST("/api/settings/autosave/run", settings.RunAutosave)
	router.PUT("/api/settings/passcode", settings.UpdatePasscode)

	return router
}
