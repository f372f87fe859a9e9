package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{envAPIBaseURL, envDBPath, envLogLevel} {
		t.Setenv(k, "")
	}
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:3000/api", c.APIBaseURL)
	assert.Equal(t, ".taiglo/session.db", c.DBPath)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_NoSourcesYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(nil)
	require.NoError(t, err)

	want := &Config{APIBaseURL: DefaultAPIBaseURL, DBPath: DefaultDBPath, LogLevel: DefaultLogLevel}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAPIBaseURL, "http://env:1/api")
	t.Setenv(envLogLevel, "warn")

	path := writeTempJSON(t, map[string]any{
		"api_base_url": "http://json:2/api",
		"db_path":      "/tmp/json.db",
	})

	tests := []struct {
		name string
		args []string
		want *Config
	}{
		{
			name: "env only",
			args: nil,
			want: &Config{APIBaseURL: "http://env:1/api", DBPath: DefaultDBPath, LogLevel: "warn"},
		},
		{
			name: "json over env",
			args: []string{"-c", path},
			want: &Config{APIBaseURL: "http://json:2/api", DBPath: "/tmp/json.db", LogLevel: "warn"},
		},
		{
			name: "flags over json",
			args: []string{"-config", path, "-a", "http://flag:3/api/", "-l", "debug"},
			want: &Config{APIBaseURL: "http://flag:3/api", DBPath: "/tmp/json.db", LogLevel: "debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(tt.args)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, cfg))
		})
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

	_, err := load([]string{"-c", bad})
	require.ErrorContains(t, err, "parse config")
}

func TestLoad_MissingJSONFile(t *testing.T) {
	clearEnv(t)

	_, err := load([]string{"-c", filepath.Join(t.TempDir(), "absent.json")})
	require.ErrorContains(t, err, "read config")
}

func TestParseFlags_MissingValue(t *testing.T) {
	cfg := &Config{}
	err := parseFlags(cfg, []string{"-a"})
	require.Error(t, err)
}

func TestParseEnv_ReadsDotEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range []string{envAPIBaseURL, envDBPath, envLogLevel} {
		require.NoError(t, os.Unsetenv(k))
	}

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TAIGLO_DB_PATH=/var/lib/taiglo.db\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(envDBPath) })

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, envFile))

	assert.Equal(t, "/var/lib/taiglo.db", cfg.DBPath)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
}

func TestParseEnv_MissingDotEnvIsIgnored(t *testing.T) {
	clearEnv(t)
	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), "nope.env")))
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
}
