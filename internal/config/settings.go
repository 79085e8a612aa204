package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/topstack/topstack/internal/models"
)

// LoadSettings loads the global settings from ~/.topstack/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFile(path)
}

// LoadSettingsFile loads settings from an explicit path.
func LoadSettingsFile(path string) (*models.Settings, error) {
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	settings.Normalize()
	return settings, nil
}

// SaveSettings saves the global settings to ~/.topstack/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// SettingKeys lists the dotted keys accepted by SetSetting.
var SettingKeys = []string{
	"storage.backend",
	"storage.dir",
	"storage.key",
	"appearance.theme",
	"appearance.show_done_time",
	"appearance.confirm_delete",
	"log.level",
}

// SetSetting assigns a value addressed by a dotted key.
func SetSetting(s *models.Settings, key, value string) error {
	switch key {
	case "storage.backend":
		switch value {
		case models.BackendFile, models.BackendSQLite, models.BackendMemory:
			s.Storage.Backend = value
		default:
			return fmt.Errorf("storage.backend must be one of: file, sqlite, memory")
		}
	case "storage.dir":
		s.Storage.Dir = value
	case "storage.key":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("storage.key must not be empty")
		}
		s.Storage.Key = value
	case "appearance.theme":
		switch value {
		case "system", "light", "dark":
			s.Appearance.Theme = value
		default:
			return fmt.Errorf("appearance.theme must be one of: system, light, dark")
		}
	case "appearance.show_done_time":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("appearance.show_done_time: %w", err)
		}
		s.Appearance.ShowDoneTime = b
	case "appearance.confirm_delete":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("appearance.confirm_delete: %w", err)
		}
		s.Appearance.ConfirmDelete = b
	case "log.level":
		if _, err := ParseLevel(value); err != nil {
			return err
		}
		s.Log.Level = value
	default:
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(SettingKeys, ", "))
	}
	return nil
}
