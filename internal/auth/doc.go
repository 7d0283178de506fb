// Package auth guards the HTTP surface with a single-user passcode.
//
// It supports two authentication modes:
//   - "none": No authentication required (default)
//   - "passcode": A single bcrypt-hashed passcode with session cookies
//
// # Configuration
//
// Set AUTH_MODE environment variable to select the mode:
//
//	AUTH_MODE=none      # Default, no auth required
//	AUTH_MODE=passcode  # Requires passcode setup and login
//
// For passcode mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	sessionManager, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(sessionManager, cfg.Auth)
//	router.Use(sessionManager.SessionLoadSave())
//	router.Use(authMiddleware.Handler())
package auth
