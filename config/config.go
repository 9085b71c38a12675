// Package config loads the server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the SQLite database path.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScannerConfig controls the quota-shortfall scanner.
type ScannerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalMinutes int           `yaml:"interval_minutes"`
	Interval        time.Duration `yaml:"-"` // Derived, ignored by the YAML parser
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
			RateLimitPerSec: 20,
			RateLimitBurst:  40,
			CacheTTLSeconds: 30,
		},
		Database: DatabaseConfig{Path: "roster.db"},
		Scanner:  ScannerConfig{Enabled: true, IntervalMinutes: 60},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path, falling back to defaults when path is
// empty or the file is absent, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Scanner.IntervalMinutes <= 0 {
		cfg.Scanner.IntervalMinutes = 60
	}
	cfg.Scanner.Interval = time.Duration(cfg.Scanner.IntervalMinutes) * time.Minute
	return cfg, nil
}

// applyEnv layers ROSTER_* environment variables over the file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ROSTER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ROSTER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ROSTER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ROSTER_SCANNER_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Scanner.Enabled = enabled
		}
	}
}
