// Package config loads runtime configuration for the Taiglo CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything above.
//
// Environment
//
//	TAIGLO_API_URL    base URL of the REST backend, including the /api prefix
//	TAIGLO_DB_PATH    SQLite file holding the stored credential
//	TAIGLO_LOG_LEVEL  debug | info | warn | error
//
// Flags
//
//	-a string   backend base URL
//	-d string   database path
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:3000/api",
//	  "db_path": ".taiglo/session.db",
//	  "log_level": "debug"
//	}
//
// Empty JSON fields leave the earlier value in place.
package config
