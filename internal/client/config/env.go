package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	envAPIBaseURL = "TAIGLO_API_URL"
	envDBPath     = "TAIGLO_DB_PATH"
	envLogLevel   = "TAIGLO_LOG_LEVEL"
)

// parseEnv seeds the process environment from the given .env files
// (".env" when none are named) and overlays the TAIGLO_* variables on cfg.
// A missing .env file is not an error. Variables already set in the
// environment are never overridden by the file.
func parseEnv(cfg *Config, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	if v, ok := os.LookupEnv(envAPIBaseURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(envDBPath); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv(envLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	return nil
}
