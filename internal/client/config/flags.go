package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taiglo/internal/flagx"
)

// parseFlags populates cfg from the -a, -d and -l flags in args.
// Other flags are filtered out first so they cannot break parsing.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("taiglo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to the session database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-d", "-l"})); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
