package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/scheduler"
	"github.com/openshelf/openshelf/internal/settingsstore"
)

// SettingsController serves theme, autosave and passcode settings.
type SettingsController struct {
	settings   *settingsstore.SettingsStore
	scheduler  *scheduler.AutosaveScheduler
	authConfig config.Auth
}

func NewSettingsController(settings *settingsstore.SettingsStore, sched *scheduler.AutosaveScheduler, authCfg config.Auth) *SettingsController {
	return &SettingsController{
		settings:   settings,
		scheduler:  sched,
		authConfig: authCfg,
	}
}

// Get returns the current settings with their sources.
func (sc *SettingsController) Get(c *gin.Context) {
	themeInfo := sc.settings.GetThemeInfo()

	resp := gin.H{
		"theme":        themeInfo.Theme,
		"theme_source": themeInfo.Source,
		"autosave": gin.H{
			"enabled":  sc.settings.GetAutosaveEnabled(),
			"schedule": sc.settings.GetAutosaveSchedule(),
			"last_at":  formatTime(sc.settings.GetAutosaveLastAt()),
		},
		"auth_mode":    sc.authConfig.Mode,
		"passcode_set": sc.settings.GetPasscodeHash() != "",
	}

	if sc.scheduler != nil {
		resp["autosave"].(gin.H)["running"] = sc.scheduler.IsRunning()
		if next := sc.scheduler.GetNextRunTime(); next != nil {
			resp["autosave"].(gin.H)["next_run_at"] = next.Format(time.RFC3339)
		}
	}

	c.IndentedJSON(200, resp)
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// UpdateTheme stores the UI theme preference.
func (sc *SettingsController) UpdateTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "theme is required")
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		respondBadRequest(c, "theme must be light or dark")
		return
	}

	if err := sc.settings.SetTheme(req.Theme); err != nil {
		respondInternalError(c, err, "set theme")
		return
	}
	respondSuccess(c, "theme updated")
}

type autosaveRequest struct {
	Enabled  *bool  `json:"enabled" binding:"required"`
	Schedule string `json:"schedule"`
}

// UpdateAutosave stores the autosave settings and restarts the
// scheduler. A schedule the cron parser rejects is rolled back.
func (sc *SettingsController) UpdateAutosave(c *gin.Context) {
	var req autosaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "enabled is required")
		return
	}

	previousSchedule := sc.settings.GetAutosaveSchedule()

	if err := sc.settings.SetAutosaveEnabled(*req.Enabled); err != nil {
		respondInternalError(c, err, "set autosave enabled")
		return
	}
	if req.Schedule != "" {
		if err := sc.settings.SetAutosaveSchedule(req.Schedule); err != nil {
			respondInternalError(c, err, "set autosave schedule")
			return
		}
	}

	if sc.scheduler != nil {
		if err := sc.scheduler.Reschedule(); err != nil {
			if rbErr := sc.settings.SetAutosaveSchedule(previousSchedule); rbErr == nil {
				_ = sc.scheduler.Reschedule()
			}
			respondBadRequest(c, "invalid autosave schedule: "+err.Error())
			return
		}
	}

	respondSuccess(c, "autosave settings updated")
}

// RunAutosave triggers an immediate backup dump.
func (sc *SettingsController) RunAutosave(c *gin.Context) {
	if sc.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "autosave scheduler is not configured")
		return
	}
	if err := sc.scheduler.RunNow(); err != nil {
		respondInternalError(c, err, "run autosave")
		return
	}
	respondSuccess(c, "backup started")
}

type passcodeChangeRequest struct {
	CurrentPasscode string `json:"current_passcode"`
	NewPasscode     string `json:"new_passcode" binding:"required"`
}

// UpdatePasscode replaces the passcode. The current one must be
// supplied when a passcode is already set; initial setup goes through
// the auth controller instead.
func (sc *SettingsController) UpdatePasscode(c *gin.Context) {
	var req passcodeChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "new_passcode is required")
		return
	}

	hash := sc.settings.GetPasscodeHash()
	if hash == "" {
		respondError(c, http.StatusConflict, "no passcode configured, use setup first")
		return
	}
	if err := auth.CheckPasscode(req.CurrentPasscode, hash); err != nil {
		respondError(c, http.StatusUnauthorized, "current passcode is incorrect")
		return
	}

	newHash, err := auth.HashPasscode(req.NewPasscode, sc.authConfig.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasscodeTooShort):
			respondBadRequest(c, "passcode must be at least 4 characters")
		case errors.Is(err, auth.ErrPasscodeTooLong):
			respondBadRequest(c, "passcode exceeds maximum length of 72 characters")
		default:
			respondInternalError(c, err, "hash passcode")
		}
		return
	}

	if err := sc.settings.SetPasscodeHash(newHash); err != nil {
		respondInternalError(c, err, "store passcode")
		return
	}
	respondSuccess(c, "passcode updated")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
