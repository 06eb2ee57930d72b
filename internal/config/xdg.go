// Package config resolves keysprint paths and settings.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "keysprint"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, fallback)
}

// DefaultWordListPath builds the default word list path for a language.
func DefaultWordListPath(lang string) string {
	return filepath.Join(XDGConfigHome(), appDir, "wordlists", lang+".txt")
}

// DefaultDBPath returns the default path of the local storage database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "keysprint.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultEnvPath returns the optional dotenv file read at startup.
func DefaultEnvPath() string {
	return filepath.Join(XDGConfigHome(), appDir, ".env")
}
