package http

import (
	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/library"
	"github.com/openshelf/openshelf/internal/scheduler"
	"github.com/openshelf/openshelf/internal/settingsstore"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Library  *library.Service
	Database *database.Database
	Settings *settingsstore.SettingsStore
	Auditor  *audit.Auditor

	// Autosave scheduler (optional)
	Scheduler *scheduler.AutosaveScheduler

	// Authentication
	AuthConfig     config.Auth
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}
