// Package config loads server configuration.
//
// Sources, lowest precedence first:
//  1. built-in defaults
//  2. a YAML file named by CONFIG_FILE, if set
//  3. environment variables
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

// Config holds all application configuration.
type Config struct {
	Port            int           `yaml:"port"`
	DBPath          string        `yaml:"db_path"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Auth AuthConfig `yaml:"auth"`
	Log  LogConfig  `yaml:"log"`
}

// AuthConfig configures the session gate and the GitHub provider.
type AuthConfig struct {
	Secret       string        `yaml:"secret"`
	URL          string        `yaml:"url"`
	GitHubID     string        `yaml:"github_id"`
	GitHubSecret string        `yaml:"github_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// LogConfig selects the log level and output format ("json" or "text").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MinSecretLength mirrors the session manager's lower bound so a bad secret
// fails at load time with a config error instead of at server start.
const MinSecretLength = 16

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:            8080,
		DBPath:          "data/snippets.db",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Auth: AuthConfig{
			SessionTTL: 30 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the optional CONFIG_FILE, applies environment overrides and
// validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Auth.URL == "" {
		cfg.Auth.URL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.Auth.URL = strings.TrimRight(cfg.Auth.URL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		}
		c.Port = port
	}
	setString(&c.DBPath, "DB_PATH")
	setString(&c.Auth.Secret, "AUTH_SECRET")
	setString(&c.Auth.URL, "AUTH_URL")
	setString(&c.Auth.GitHubID, "AUTH_GITHUB_ID")
	setString(&c.Auth.GitHubSecret, "AUTH_GITHUB_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	errs = append(errs,
		setDuration(&c.Auth.SessionTTL, "SESSION_TTL"),
		setDuration(&c.RequestTimeout, "REQUEST_TIMEOUT"),
		setDuration(&c.ShutdownTimeout, "SHUTDOWN_TIMEOUT"),
	)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid environment: %w", err)
	}
	return nil
}

// Validate reports every problem at once rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if len(c.Auth.Secret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least %d characters", MinSecretLength))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if (c.Auth.GitHubID == "") != (c.Auth.GitHubSecret == "") {
		errs = append(errs, errors.New("AUTH_GITHUB_ID and AUTH_GITHUB_SECRET must be set together"))
	}

	return errors.Join(errs...)
}

// GitHubEnabled reports whether GitHub sign in is configured.
func (c *Config) GitHubEnabled() bool {
	return c.Auth.GitHubID != "" && c.Auth.GitHubSecret != ""
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
