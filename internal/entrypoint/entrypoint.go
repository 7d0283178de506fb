package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	http_controllers "github.com/openshelf/openshelf/internal/http"
	"github.com/openshelf/openshelf/internal/lending"
	"github.com/openshelf/openshelf/internal/library"
	"github.com/openshelf/openshelf/internal/notify"
	"github.com/openshelf/openshelf/internal/scheduler"
	"github.com/openshelf/openshelf/internal/settingsstore"
	"github.com/openshelf/openshelf/internal/snapshot"
	"github.com/openshelf/openshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. SIGKILL cannot be caught, so
	// it is not registered.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// newSnapshotStore selects the persistence backend for the aggregate.
func newSnapshotStore(cfg *config.Config, db *database.Database) snapshot.Store {
	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendSQLite:
		log.Printf("Snapshot backend: sqlite (%s)", cfg.Database.Path)
		return snapshot.NewSQLiteStore(db.DB)
	default:
		log.Printf("Snapshot backend: file (%s)", cfg.Snapshot.Path)
		return snapshot.NewFileStore(cfg.Snapshot.Path)
	}
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting OpenShelf v%s", version)

	// Initialize database (settings, sessions, sqlite snapshot backend)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Load the persisted aggregate
	store := newSnapshotStore(cfg, db)
	snap, err := store.Load()
	if err != nil {
		log.Fatalf("Failed to load library data: %v", err)
	}

	// Create auditor for backup dumps before destructive operations
	auditor := audit.NewAuditor(cfg.Audit.Dir)

	// Initialize task queue if enabled; reservation notifications are
	// delivered through it so returns never block on delivery
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var notifier notify.Notifier
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewNotifyMemberQueue(nil))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		notifier = tasks.NewQueueNotifier(taskClient)
	} else {
		notifier = notify.NewLogNotifier()
	}

	// Build the library service around the loaded snapshot
	svc := library.NewService(snap, store, notifier, library.Options{
		Lending: lending.Options{
			LoanPeriodDays: cfg.Lending.LoanPeriodDays,
			BorrowLimit:    cfg.Lending.BorrowLimit,
			FineRate:       cfg.Lending.FineRate,
		},
		ReservationHoldHours: cfg.Lending.ReservationHoldHours,
	})

	settings := settingsstore.New(db)

	// Start the periodic autosave job
	autosave := scheduler.NewAutosaveScheduler(svc, settings, auditor)
	if err := autosave.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start autosave scheduler: %v", err)
	}

	// Initialize authentication if enabled
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModePasscode {
		log.Printf("Authentication mode: passcode")

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		if settings.GetPasscodeHash() == "" {
			log.Printf("No passcode configured. POST to /setup to set one.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Library:        svc,
		Database:       db,
		Settings:       settings,
		Auditor:        auditor,
		Scheduler:      autosave,
		AuthConfig:     cfg.Auth,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		autosave.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
