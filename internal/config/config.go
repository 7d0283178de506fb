package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone     AuthMode = "none"     // No authentication required (default)
	AuthModePasscode AuthMode = "passcode" // Single-user passcode with sessions
)

type SnapshotBackend string

const (
	SnapshotBackendFile   SnapshotBackend = "file"   // JSON file on disk (default)
	SnapshotBackendSQLite SnapshotBackend = "sqlite" // Single row in the app database
)

type (
	Config struct {
		HTTP
		Snapshot
		Lending
		Autosave
		Audit
		Global
		Database
		Tasks
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Snapshot struct {
		Backend SnapshotBackend
		Path    string // Data file location for the file backend
	}
	Lending struct {
		LoanPeriodDays       int
		BorrowLimit          int
		FineRate             int64
		ReservationHoldHours int
	}
	Autosave struct {
		Enabled  bool
		Schedule string // Cron format or descriptor, e.g. "@every 5m"
	}
	Audit struct {
		Dir string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("snapshot_backend", "file")
	v.SetDefault("snapshot_path", DefaultSnapshotPath)
	v.SetDefault("audit_dir", "./audit")

	// Lending policy defaults
	v.SetDefault("loan_period_days", 14)
	v.SetDefault("borrow_limit", 3)
	v.SetDefault("fine_rate", 1)
	v.SetDefault("reservation_hold_hours", 24)

	// Autosave defaults
	v.SetDefault("autosave_enabled", true)
	v.SetDefault("autosave_schedule", "@every 5m")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Snapshot: Snapshot{
			Backend: SnapshotBackend(v.GetString("SNAPSHOT_BACKEND")),
			Path:    v.GetString("SNAPSHOT_PATH"),
		},
		Lending: Lending{
			LoanPeriodDays:       v.GetInt("LOAN_PERIOD_DAYS"),
			BorrowLimit:          v.GetInt("BORROW_LIMIT"),
			FineRate:             v.GetInt64("FINE_RATE"),
			ReservationHoldHours: v.GetInt("RESERVATION_HOLD_HOURS"),
		},
		Autosave: Autosave{
			Enabled:  v.GetBool("AUTOSAVE_ENABLED"),
			Schedule: v.GetString("AUTOSAVE_SCHEDULE"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Auth: Auth{
			Mode:            AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
	}
}
