package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// AppName names the configuration directory
	AppName = "rxhkd"
)

var (
	// ConfigDir is the global configuration directory ($XDG_CONFIG_HOME/rxhkd)
	ConfigDir string

	// BindsFile is the default bind file
	BindsFile string

	// SettingsFile is the optional daemon settings file
	SettingsFile string

	// DatabasePath is the default SQLite database file for trigger history and analytics
	DatabasePath string
)

// Initialize resolves the configuration paths and creates the configuration
// directory if it doesn't exist.
func Initialize() error {
	dir, err := configHome()
	if err != nil {
		return err
	}

	ConfigDir = filepath.Join(dir, AppName)
	BindsFile = filepath.Join(ConfigDir, "rxhkdrc")
	SettingsFile = filepath.Join(ConfigDir, "settings.yaml")
	DatabasePath = filepath.Join(ConfigDir, "rxhkd.db")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// configHome returns $XDG_CONFIG_HOME, falling back to ~/.config
func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" && filepath.IsAbs(dir) {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config"), nil
}

// ResolveBindsFile returns path when set, otherwise the default bind file.
// A leading ~/ is expanded to the home directory.
func ResolveBindsFile(path string) (string, error) {
	if path == "" {
		return BindsFile, nil
	}
	return expandHome(path)
}

func expandHome(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
