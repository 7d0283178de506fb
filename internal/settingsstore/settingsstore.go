package settingsstore

import (
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

const (
	DefaultTheme            = "light"
	DefaultAutosaveSchedule = "@every 5m"
)

// Priority: database > environment > default
type SettingsStore struct {
	db *database.Database
}

func New(db *database.Database) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) GetTheme() string {
	setting, err := s.db.GetSetting(entities.SettingKeyTheme)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if envTheme := os.Getenv("OPENSHELF_THEME"); envTheme != "" {
		return envTheme
	}

	return DefaultTheme
}

func (s *SettingsStore) SetTheme(theme string) error {
	return s.db.SetSetting(entities.SettingKeyTheme, theme)
}

// GetPasscodeHash returns the stored bcrypt hash, or "" when no
// passcode has been set up yet.
func (s *SettingsStore) GetPasscodeHash() string {
	setting, err := s.db.GetSetting(entities.SettingKeyPasscodeHash)
	if err != nil {
		return ""
	}
	return setting.Value
}

func (s *SettingsStore) SetPasscodeHash(hash string) error {
	return s.db.SetSetting(entities.SettingKeyPasscodeHash, hash)
}

func (s *SettingsStore) ClearPasscode() error {
	err := s.db.DeleteSetting(entities.SettingKeyPasscodeHash)
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	return err
}

func (s *SettingsStore) GetAutosaveEnabled() bool {
	setting, err := s.db.GetSetting(entities.SettingKeyAutosaveEnabled)
	if err == nil && setting.Value != "" {
		return setting.Value == "true"
	}

	if env := os.Getenv("AUTOSAVE_ENABLED"); env != "" {
		return env == "true"
	}

	return true
}

func (s *SettingsStore) SetAutosaveEnabled(enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return s.db.SetSetting(entities.SettingKeyAutosaveEnabled, value)
}

func (s *SettingsStore) GetAutosaveSchedule() string {
	setting, err := s.db.GetSetting(entities.SettingKeyAutosaveSchedule)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if env := os.Getenv("AUTOSAVE_SCHEDULE"); env != "" {
		return env
	}

	return DefaultAutosaveSchedule
}

func (s *SettingsStore) SetAutosaveSchedule(schedule string) error {
	return s.db.SetSetting(entities.SettingKeyAutosaveSchedule, schedule)
}

// GetAutosaveLastAt returns the zero time when no autosave has run yet.
func (s *SettingsStore) GetAutosaveLastAt() time.Time {
	setting, err := s.db.GetSetting(entities.SettingKeyAutosaveLastAt)
	if err != nil || setting.Value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, setting.Value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func (s *SettingsStore) SetAutosaveLastAt(at time.Time) error {
	return s.db.SetSetting(entities.SettingKeyAutosaveLastAt, at.UTC().Format(time.RFC3339))
}

type ThemeInfo struct {
	Theme  string `json:"theme"`
	Source string `json:"source"` // "database", "environment", or "default"
}

func (s *SettingsStore) GetThemeInfo() ThemeInfo {
	source := "default"
	if setting, err := s.db.GetSetting(entities.SettingKeyTheme); err == nil && setting.Value != "" {
		source = "database"
	} else if os.Getenv("OPENSHELF_THEME") != "" {
		source = "environment"
	}
	return ThemeInfo{Theme: s.GetTheme(), Source: source}
}
