// Package paths decides where the board's configuration and data live.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform config and data
// roots.
const AppName = "kanban"

// Environment variables that override the platform defaults.
const (
	EnvConfigDir = "KANBAN_CONFIG_DIR"
	EnvDataDir   = "KANBAN_DATA_DIR"
)

// ConfigFile is the name of the configuration file inside the config dir.
const ConfigFile = "config.yaml"

// overridable in tests
var (
	homeDir       = os.UserHomeDir
	userConfigDir = os.UserConfigDir
)

// xdgDir returns $<env>/kanban, falling back to ~/<fallback...>/kanban on
// Linux and to the OS user config dir elsewhere.
func xdgDir(env string, fallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...), nil
}

// DefaultConfigDir is $XDG_CONFIG_HOME/kanban (~/.config/kanban) on Linux and
// <UserConfigDir>/kanban on macOS and Windows.
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir is $XDG_DATA_HOME/kanban (~/.local/share/kanban) on Linux
// and <UserConfigDir>/kanban on macOS and Windows.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir picks the first of: flag, $KANBAN_CONFIG_DIR, default.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir picks the first of: flag, the data_dir config value,
// $KANBAN_DATA_DIR, default.
func ResolveDataDir(flag, configured string) (string, error) {
	return resolve(DefaultDataDir, flag, configured, os.Getenv(EnvDataDir))
}

func resolve(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
