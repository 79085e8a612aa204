package models

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultStorageKey is the slot key holding the stack.
const DefaultStorageKey = "todoStack"

// StorageConfig selects where the stack is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "memory"
	Dir     string `yaml:"dir"`     // empty = ~/.topstack/data
	Key     string `yaml:"key"`
}

// AppearanceConfig holds appearance settings.
type AppearanceConfig struct {
	Theme         string `yaml:"theme"` // "system" | "light" | "dark"
	ShowDoneTime  bool   `yaml:"show_done_time"`
	ConfirmDelete bool   `yaml:"confirm_delete"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// Settings represents global application settings.
// This corresponds to ~/.topstack/settings.yaml.
type Settings struct {
	Version    int              `yaml:"version"`
	Storage    StorageConfig    `yaml:"storage"`
	Appearance AppearanceConfig `yaml:"appearance"`
	Log        LogConfig        `yaml:"log"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     DefaultStorageKey,
		},
		Appearance: AppearanceConfig{
			Theme:        "system",
			ShowDoneTime: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Normalize fills zero values left by a partial settings file.
func (s *Settings) Normalize() {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Storage.Backend == "" {
		s.Storage.Backend = BackendFile
	}
	if s.Storage.Key == "" {
		s.Storage.Key = DefaultStorageKey
	}
	if s.Appearance.Theme == "" {
		s.Appearance.Theme = "system"
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
}
