package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds the daemon options read from settings.yaml. Every field is
// optional.
type Settings struct {
	// Shell runs bind commands as `<shell> -c <command>`
	Shell string `yaml:"shell"`
	// History enables recording of triggered binds. Defaults to true.
	History *bool `yaml:"history"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
	// Database overrides the SQLite database path
	Database string `yaml:"database"`
	// Display overrides $DISPLAY
	Display string `yaml:"display"`
}

// DefaultSettings returns the settings used when no settings file exists
func DefaultSettings() Settings {
	enabled := true
	return Settings{
		Shell:    "sh",
		History:  &enabled,
		LogLevel: "info",
		Database: DatabasePath,
	}
}

// LoadSettings reads settings from path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if settings.Shell == "" {
		settings.Shell = "sh"
	}
	if settings.History == nil {
		enabled := true
		settings.History = &enabled
	}
	if settings.Database == "" {
		settings.Database = DatabasePath
	}
	if settings.Database, err = expandHome(settings.Database); err != nil {
		return settings, err
	}
	if _, err := settings.Level(); err != nil {
		return settings, err
	}

	return settings, nil
}

// HistoryEnabled reports whether triggers should be recorded
func (s Settings) HistoryEnabled() bool {
	return s.History == nil || *s.History
}

// Level converts LogLevel to a slog level
func (s Settings) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s.LogLevel)
	}
}

// Save writes the settings to path as YAML
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
