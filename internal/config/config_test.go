package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SHOWCASE_CONFIG_PATH", "SHOWCASE_SERVER_HOST", "SHOWCASE_SERVER_PORT", "SHOWCASE_DB_PATH",
		"SHOWCASE_LOG_LEVEL", "SHOWCASE_LOG_FORMAT", "SHOWCASE_TRANSPORT_MODE", "SHOWCASE_DATA_SOURCE",
		"SHOWCASE_DATA_SOURCE_TIMEOUT",
		"SHOWCASE_AUTH_ENABLED", "SHOWCASE_EDITOR_TOKEN_HASHES", "SHOWCASE_SESSION_SECRET",
		"SHOWCASE_SESSION_TTL", "SHOWCASE_SECURE_COOKIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, TransportHTTP, cfg.Transport.Mode)
	require.Equal(t, "embedded", cfg.Catalog.DataSource)
	require.False(t, cfg.Auth.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
log:
  level: debug
  format: json
catalog:
  data_source: ./projects.json
  load_timeout: 3s
auth:
  enabled: true
  editor_token_hashes: [" ABC "]
  session_secret: file-secret
  session_ttl: 2h
`), 0o644))
	t.Setenv("SHOWCASE_CONFIG_PATH", path)
	t.Setenv("SHOWCASE_SERVER_PORT", "9191")
	t.Setenv("SHOWCASE_EDITOR_TOKEN_HASHES", "AAA, bbb,,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, FormatJSON, cfg.Log.Format)
	require.Equal(t, "./projects.json", cfg.Catalog.DataSource)
	require.Equal(t, 3*time.Second, cfg.Catalog.LoadTimeout)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, []string{"aaa", "bbb"}, cfg.Auth.EditorTokenHashes)
	require.Equal(t, "file-secret", cfg.Auth.SessionSecret)
	require.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := map[string]string{
		"SHOWCASE_SERVER_PORT":         "eighty",
		"SHOWCASE_AUTH_ENABLED":        "maybe",
		"SHOWCASE_SESSION_TTL":         "forever",
		"SHOWCASE_SECURE_COOKIES":      "sometimes",
		"SHOWCASE_DATA_SOURCE_TIMEOUT": "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOWCASE_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, false},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, false},
		{"unknown transport", func(c *Config) { c.Transport.Mode = "grpc" }, false},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"pretty format", func(c *Config) { c.Log.Format = FormatPretty }, true},
		{"auth without secret", func(c *Config) { c.Auth.Enabled = true }, false},
		{"auth with secret", func(c *Config) { c.Auth.Enabled = true; c.Auth.SessionSecret = "s" }, true},
		{"auth zero ttl", func(c *Config) { c.Auth.Enabled = true; c.Auth.SessionSecret = "s"; c.Auth.SessionTTL = 0 }, false},
		{"zero load timeout", func(c *Config) { c.Catalog.LoadTimeout = 0 }, false},
		{"stdio ignores auth", func(c *Config) { c.Transport.Mode = TransportStdio; c.Auth.Enabled = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
