package auth

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/settingsstore"
)

// setupMutex serializes passcode setup so two concurrent requests
// cannot both pass the has-no-passcode check.
var setupMutex sync.Mutex

// Controller handles the passcode login endpoints.
type Controller struct {
	settings       *settingsstore.SettingsStore
	sessionManager *SessionManager
	config         config.Auth
}

// NewController creates a new authentication controller.
func NewController(settings *settingsstore.SettingsStore, sessionManager *SessionManager, cfg config.Auth) *Controller {
	return &Controller{
		settings:       settings,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", ac.Status)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.POST("/setup", ac.Setup)
}

type loginRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// Status reports whether the caller is authenticated and whether a
// passcode has been configured at all.
func (ac *Controller) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request),
		"passcode_set":  ac.settings.GetPasscodeHash() != "",
		"auth_mode":     ac.config.Mode,
		"csrf_token":    GetCSRFToken(c),
	})
}

// Login verifies the passcode and opens a session.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passcode is required"})
		return
	}

	hash := ac.settings.GetPasscodeHash()
	if hash == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "no passcode configured, use setup first"})
		return
	}

	if err := CheckPasscode(req.Passcode, hash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid passcode"})
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// Logout destroys the session.
func (ac *Controller) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// Setup stores the initial passcode. Refused once one exists; changing
// it afterwards requires an authenticated settings call.
func (ac *Controller) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	if ac.settings.GetPasscodeHash() != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "passcode already configured"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passcode is required"})
		return
	}

	hash, err := HashPasscode(req.Passcode, ac.config.BcryptCost)
	if err != nil {
		errorMsg := "failed to set passcode"
		switch {
		case errors.Is(err, ErrPasscodeTooShort):
			errorMsg = "passcode must be at least 4 characters"
		case errors.Is(err, ErrPasscodeTooLong):
			errorMsg = "passcode exceeds maximum length of 72 characters"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errorMsg})
		return
	}

	if err := ac.settings.SetPasscodeHash(hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store passcode"})
		return
	}

	if ac.sessionManager != nil {
		_ = ac.sessionManager.CreateSession(c.Request)
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}
