package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// MinSessionSecretLength is the shortest accepted session secret in bytes.
const MinSessionSecretLength = 32

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Session cookie configuration
	Session SessionConfig `toml:"session"`

	// Card search configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"            env:"MANATOMB_PORT"`
	AllowedOrigins []string `toml:"allowed_origins" env:"MANATOMB_ALLOWED_ORIGINS" envSeparator:","`
	ReadTimeout    string   `toml:"read_timeout"    env:"MANATOMB_READ_TIMEOUT"`
	WriteTimeout   string   `toml:"write_timeout"   env:"MANATOMB_WRITE_TIMEOUT"`
	RequestTimeout string   `toml:"request_timeout" env:"MANATOMB_REQUEST_TIMEOUT"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path           string `toml:"path"            env:"MANATOMB_DB_PATH"`
	AutoMigrate    bool   `toml:"auto_migrate"    env:"MANATOMB_DB_AUTO_MIGRATE"`
	BackupDir      string `toml:"backup_dir"      env:"MANATOMB_BACKUP_DIR"`
	BackupInterval string `toml:"backup_interval" env:"MANATOMB_BACKUP_INTERVAL"` // empty disables scheduled backups
	BackupKeep     int    `toml:"backup_keep"     env:"MANATOMB_BACKUP_KEEP"`
}

// SessionConfig contains session cookie settings.
type SessionConfig struct {
	Secret   string `toml:"secret"    env:"SESSION_SECRET"`
	Secure   bool   `toml:"secure"    env:"MANATOMB_SESSION_SECURE"`
	SameSite string `toml:"same_site" env:"MANATOMB_SESSION_SAME_SITE"` // lax, strict or none
	MaxAge   string `toml:"max_age"   env:"MANATOMB_SESSION_MAX_AGE"`
}

// ScryfallConfig contains card search API settings.
type ScryfallConfig struct {
	BaseURL   string  `toml:"base_url"   env:"MANATOMB_SCRYFALL_URL"`
	UserAgent string  `toml:"user_agent" env:"MANATOMB_SCRYFALL_USER_AGENT"`
	RateLimit float64 `toml:"rate_limit" env:"MANATOMB_SCRYFALL_RATE_LIMIT"` // requests per second
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level       string `toml:"level"       env:"MANATOMB_LOG_LEVEL"` // debug, info, warn, error
	Development bool   `toml:"development" env:"MANATOMB_LOG_DEVELOPMENT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
			ReadTimeout:    "15s",
			WriteTimeout:   "60s",
			RequestTimeout: "60s",
		},
		Database: DatabaseConfig{
			Path:           "",
			AutoMigrate:    true,
			BackupDir:      "",
			BackupInterval: "",
			BackupKeep:     7,
		},
		Session: SessionConfig{
			Secret:   "",
			Secure:   true,
			SameSite: "none",
			MaxAge:   "720h",
		},
		Scryfall: ScryfallConfig{
			BaseURL:   "https://api.scryfall.com",
			UserAgent: "ManaTomb/1.0",
			RateLimit: 10,
		},
		Log: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// DefaultPath returns the default path to the configuration file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mana-tomb", "config.toml"), nil
}

// DefaultDatabasePath returns the database path used when none is configured.
func DefaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mana-tomb", "data.db"), nil
}

// Load reads the configuration file at path and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// The file may hold the session secret.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}

	durations := map[string]string{
		"server.read_timeout":    c.Server.ReadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
		"server.request_timeout": c.Server.RequestTimeout,
		"session.max_age":        c.Session.MaxAge,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if c.Database.BackupInterval != "" {
		d, err := time.ParseDuration(c.Database.BackupInterval)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid database.backup_interval %q", c.Database.BackupInterval)
		}
	}

	if c.Database.BackupKeep < 0 {
		return fmt.Errorf("database.backup_keep must not be negative: %d", c.Database.BackupKeep)
	}

	if len(c.Session.Secret) < MinSessionSecretLength {
		return fmt.Errorf("session secret must be at least %d bytes (set SESSION_SECRET)", MinSessionSecretLength)
	}

	switch c.Session.SameSite {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("invalid session same_site %q", c.Session.SameSite)
	}

	if c.Scryfall.RateLimit <= 0 {
		return fmt.Errorf("scryfall rate limit must be positive: %v", c.Scryfall.RateLimit)
	}

	if c.Scryfall.BaseURL == "" {
		return errors.New("scryfall base url is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	return nil
}

// ReadTimeout returns the server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return mustDuration(c.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout returns the server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return mustDuration(c.Server.WriteTimeout, 60*time.Second)
}

// RequestTimeout returns the per-request handler timeout.
func (c *Config) RequestTimeout() time.Duration {
	return mustDuration(c.Server.RequestTimeout, 60*time.Second)
}

// BackupInterval returns the scheduled backup interval, or 0 when disabled.
func (c *Config) BackupInterval() time.Duration {
	return mustDuration(c.Database.BackupInterval, 0)
}

// SessionMaxAge returns the session cookie lifetime.
func (c *Config) SessionMaxAge() time.Duration {
	return mustDuration(c.Session.MaxAge, 30*24*time.Hour)
}

// mustDuration parses value, falling back when it is invalid. Validate
// reports invalid durations; accessors never fail.
func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
