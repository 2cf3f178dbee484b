// Package config loads the server configuration from a TOML file with
// environment-variable overrides (HOMEWATCH_SERVER__PORT=9090 style).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	HTTPServerTimeout time.Duration `koanf:"http_server_timeout"`
	FrontendURL       string        `koanf:"frontend_url"`
}

// SQLiteConfig holds settings for the embedded database.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// FeedConfig controls the simulated alert feed.
type FeedConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
	Chance   float64       `koanf:"chance"`
}

// ModelsConfig locates ML model artifacts on disk. Activation verifies the
// artifact resolves under this root.
type ModelsConfig struct {
	Dir string `koanf:"dir"`
}

// DemoConfig controls first-boot demo seeding.
type DemoConfig struct {
	Seed bool `koanf:"seed"`
}

// Config is the full configuration for the homewatch server.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	SQLite  SQLiteConfig  `koanf:"sqlite"`
	Logging LoggingConfig `koanf:"logging"`
	Feed    FeedConfig    `koanf:"feed"`
	Models  ModelsConfig  `koanf:"models"`
	Demo    DemoConfig    `koanf:"demo"`
}

// Default returns the built-in configuration used when the file omits keys.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8125,
			HTTPServerTimeout: 30 * time.Second,
		},
		SQLite:  SQLiteConfig{Path: "homewatch.db"},
		Logging: LoggingConfig{Level: "info"},
		Feed: FeedConfig{
			Enabled:  true,
			Interval: 6 * time.Second,
			Chance:   0.45,
		},
		Models: ModelsConfig{Dir: "models"},
		Demo:   DemoConfig{Seed: true},
	}
}

// Load reads the TOML file at path (if non-empty), then applies HOMEWATCH_
// environment overrides, on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file %q: %w", path, err)
		}
	}

	// HOMEWATCH_FEED__INTERVAL=10s -> feed.interval
	if err := k.Load(env.Provider("HOMEWATCH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "HOMEWATCH_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.Feed.Chance < 0 || cfg.Feed.Chance > 1 {
		return nil, fmt.Errorf("feed.chance must be within [0,1], got %v", cfg.Feed.Chance)
	}

	return &cfg, nil
}
