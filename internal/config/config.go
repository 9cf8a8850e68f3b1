package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Log formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// CatalogConfig locates the initial project data: "embedded", a file path or
// an http(s) URL. LoadTimeout bounds the initial load.
type CatalogConfig struct {
	DataSource  string        `yaml:"data_source"`
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// EditorTokenHashes are hex sha256 digests of accepted editor tokens.
	EditorTokenHashes []string      `yaml:"editor_token_hashes"`
	SessionSecret     string        `yaml:"session_secret"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	SecureCookies     bool          `yaml:"secure_cookies"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "showcase.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
		Catalog: CatalogConfig{
			DataSource:  "embedded",
			LoadTimeout: 15 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL: 12 * time.Hour,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("SHOWCASE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	for i, h := range cfg.Auth.EditorTokenHashes {
		cfg.Auth.EditorTokenHashes[i] = strings.ToLower(strings.TrimSpace(h))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistency in cfg.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Transport.Mode {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Log.Format {
	case FormatText, FormatJSON, FormatPretty:
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Catalog.LoadTimeout <= 0 {
		return errors.New("catalog.load_timeout must be positive")
	}
	if c.Auth.Enabled && c.Transport.Mode == TransportHTTP {
		if c.Auth.SessionSecret == "" {
			return errors.New("auth.session_secret is required when auth is enabled")
		}
		if c.Auth.SessionTTL <= 0 {
			return errors.New("auth.session_ttl must be positive")
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("SHOWCASE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SHOWCASE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SHOWCASE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("SHOWCASE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("SHOWCASE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("SHOWCASE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if mode := os.Getenv("SHOWCASE_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if src := os.Getenv("SHOWCASE_DATA_SOURCE"); src != "" {
		cfg.Catalog.DataSource = src
	}
	if timeout := os.Getenv("SHOWCASE_DATA_SOURCE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid SHOWCASE_DATA_SOURCE_TIMEOUT: %w", err)
		}
		cfg.Catalog.LoadTimeout = d
	}
	if enabled := os.Getenv("SHOWCASE_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid SHOWCASE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if hashes := os.Getenv("SHOWCASE_EDITOR_TOKEN_HASHES"); hashes != "" {
		cfg.Auth.EditorTokenHashes = splitList(hashes)
	}
	if secret := os.Getenv("SHOWCASE_SESSION_SECRET"); secret != "" {
		cfg.Auth.SessionSecret = secret
	}
	if ttl := os.Getenv("SHOWCASE_SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid SHOWCASE_SESSION_TTL: %w", err)
		}
		cfg.Auth.SessionTTL = d
	}
	if secure := os.Getenv("SHOWCASE_SECURE_COOKIES"); secure != "" {
		v, err := strconv.ParseBool(secure)
		if err != nil {
			return fmt.Errorf("invalid SHOWCASE_SECURE_COOKIES: %w", err)
		}
		cfg.Auth.SecureCookies = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
