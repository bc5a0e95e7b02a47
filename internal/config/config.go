// Package config loads docket configuration from config.toml, an optional
// config.<DOCKET_ENV>.toml overlay, and DOCKET_* environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/docket/pkg/database"
	"github.com/JaimeStill/docket/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDocketEnv     = "DOCKET_ENV"
	EnvDocketVersion = "DOCKET_VERSION"
)

// Environment variable prefixes for the sections owned by pkg/.
const (
	databaseEnvPrefix = "DOCKET_DB_"
	storageEnvPrefix  = "DOCKET_STORAGE_"
)

// Config is the root configuration shared by the server and the desk client.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  database.Config `toml:"database"`
	Storage   storage.Config  `toml:"storage"`
	API       APIConfig       `toml:"api"`
	Cases     CasesConfig     `toml:"cases"`
	Assistant AssistantConfig `toml:"assistant"`
	Desk      DeskConfig      `toml:"desk"`
	Logging   LoggingConfig   `toml:"logging"`
	Version   string          `toml:"version"`
}

// Env returns DOCKET_ENV, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDocketEnv); env != "" {
		return env
	}
	return "local"
}

// Load reads config.toml if present, merges the environment overlay, and
// finalizes every section. Without any file, defaults and environment
// variables supply everything.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// LoadClient finalizes only the desk section, so the CLI runs without
// database or storage settings.
func LoadClient() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Desk.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: desk: %w", err)
	}
	return cfg, nil
}

// read loads the base file and the DOCKET_ENV overlay, either of which may
// be missing.
func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		if cfg, err = load(BaseConfigFile); err != nil {
			return nil, err
		}
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Cases.Merge(&overlay.Cases)
	c.Assistant.Merge(&overlay.Assistant)
	c.Desk.Merge(&overlay.Desk)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvDocketVersion); v != "" {
		c.Version = v
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnvPrefix) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnvPrefix) }},
		{"api", c.API.Finalize},
		{"cases", c.Cases.Finalize},
		{"assistant", c.Assistant.Finalize},
		{"desk", c.Desk.Finalize},
		{"logging", c.Logging.Finalize},
	}

	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDocketEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
