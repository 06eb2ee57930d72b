package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvLogLevel = "KEYSPRINT_LOG_LEVEL"
	EnvDBPath   = "KEYSPRINT_DB_PATH"
	EnvLang     = "KEYSPRINT_LANG"
	EnvWords    = "KEYSPRINT_WORDS"
)

// LoadEnv loads dotenv files that exist. Variables already set in the
// process environment are not overwritten.
func LoadEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with KEYSPRINT_* environment variables.
func ApplyEnv(cfg *FileConfig) error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = &v
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok && v != "" {
		cfg.Storage.Path = &v
	}
	if v, ok := os.LookupEnv(EnvLang); ok && v != "" {
		cfg.Test.Lang = &v
	}
	if v, ok := os.LookupEnv(EnvWords); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvWords, v, err)
		}
		cfg.Test.Words = &n
	}
	return nil
}
