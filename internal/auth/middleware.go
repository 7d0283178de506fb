package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/config"
)

// ContextKeyAuthenticated marks a request that passed the passcode
// check (or runs with auth disabled).
const ContextKeyAuthenticated = "auth_authenticated"

// Middleware gates requests behind the passcode session.
type Middleware struct {
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(sessionManager *SessionManager, cfg config.Auth) *Middleware {
	publicPaths := map[string]bool{
		"/health":      true,
		"/ping":        true,
		"/login":       true,
		"/setup":       true, // Initial passcode setup
		"/favicon.ico": true,
	}

	return &Middleware{
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return func(c *gin.Context) {
			c.Set(ContextKeyAuthenticated, true)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if m.sessionManager != nil && m.sessionManager.IsAuthenticated(c.Request) {
			c.Set(ContextKeyAuthenticated, true)
			c.Next()
			return
		}

		if m.isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// isPublicPath checks if a path should be accessible without authentication.
func (m *Middleware) isPublicPath(path string) bool {
	return m.publicPaths[path]
}

// isAPIRequest determines if this is an API request vs web browser request.
func (m *Middleware) isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}

	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json")
}

// IsAuthenticated returns true if the request passed the middleware.
func IsAuthenticated(c *gin.Context) bool {
	if v, exists := c.Get(ContextKeyAuthenticated); exists {
		if ok, _ := v.(bool); ok {
			return true
		}
	}
	return false
}
