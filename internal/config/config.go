// Package config provides configuration management for fluidnet.
//
// Config file locations (priority order):
//  1. $FLUIDNET_CONFIG
//  2. ./fluidnet.yaml
//  3. $XDG_CONFIG_HOME/fluidnet/config.yaml
//  4. ~/.config/fluidnet/config.yaml
//  5. /etc/fluidnet/config.yaml
//
// Missing values fall back to defaults; command line flags override both.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fluidnet/internal/notify"
	"fluidnet/internal/solver"
)

const (
	DefaultAddr        = ":3000"
	DefaultSolverURL   = "http://127.0.0.1:5000/solve"
	DefaultJournalPath = "./fluidnet.db"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML config data and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Solver.URL == "" {
		c.Solver.URL = DefaultSolverURL
	}
	if c.Solver.Timeout == 0 {
		c.Solver.Timeout = Duration(solver.DefaultTimeout)
	}
	if c.Solver.CSRFCookie == "" {
		c.Solver.CSRFCookie = solver.DefaultCSRFCookie
	}
	if c.Solver.CSRFHeader == "" {
		c.Solver.CSRFHeader = solver.DefaultCSRFHeader
	}
	if c.Notification.Duration == 0 {
		c.Notification.Duration = Duration(notify.DefaultDuration)
	}
	if c.Journal.Path == "" {
		c.Journal.Path = DefaultJournalPath
	}
}

// Validate rejects settings no component can work with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Solver.URL)
	if err != nil {
		return fmt.Errorf("solver.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("solver.url: unsupported scheme %q", u.Scheme)
	}
	if c.Solver.Timeout.Duration() < 0 {
		return fmt.Errorf("solver.timeout: must not be negative")
	}
	if c.Notification.Duration.Duration() < 0 {
		return fmt.Errorf("notification.duration: must not be negative")
	}
	return nil
}

// SolverOptions returns client options for the configured solver
func (c *Config) SolverOptions() []solver.Option {
	return []solver.Option{
		solver.WithTimeout(c.Solver.Timeout.Duration()),
		solver.WithCSRF(c.Solver.CSRFCookie, c.Solver.CSRFHeader),
	}
}

// NewSolverClient builds a solve client from the solver section
func (c *Config) NewSolverClient() (*solver.Client, error) {
	client, err := solver.New(c.Solver.URL, c.SolverOptions()...)
	if err != nil {
		return nil, err
	}
	if c.Solver.Token != "" {
		client.SetToken(c.Solver.Token)
	}
	return client, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	journal := c.Journal.Path
	if c.Journal.Disabled {
		journal = "disabled"
	}
	summary := fmt.Sprintf("Server: %s\n", c.Server.Addr)
	summary += fmt.Sprintf("Solver: %s (timeout %s, header %s from cookie %s)\n",
		c.Solver.URL, c.Solver.Timeout.Duration(), c.Solver.CSRFHeader, c.Solver.CSRFCookie)
	summary += fmt.Sprintf("Notifications: %s\n", c.Notification.Duration.Duration().Round(time.Millisecond))
	summary += fmt.Sprintf("Journal: %s", journal)
	return summary
}
