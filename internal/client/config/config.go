package config

import (
	"os"
	"strings"
)

const (
	DefaultAPIBaseURL = "http://localhost:3000/api"
	DefaultDBPath     = ".taiglo/session.db"
	DefaultLogLevel   = "info"
)

// Config holds runtime settings for the Taiglo CLI.
type Config struct {
	APIBaseURL string
	DBPath     string
	LogLevel   string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = DefaultAPIBaseURL
	c.DBPath = DefaultDBPath
	c.LogLevel = DefaultLogLevel
}

// LoadConfig builds a Config from defaults, the environment (and .env),
// an optional JSON file and command-line flags, in that order.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}
