package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version      int                `yaml:"version"`
	Server       ServerConfig       `yaml:"server"`
	Solver       SolverConfig       `yaml:"solver"`
	Notification NotificationConfig `yaml:"notification"`
	Journal      JournalConfig      `yaml:"journal"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SolverConfig describes the remote solver endpoint
type SolverConfig struct {
	URL        string   `yaml:"url"`
	Timeout    Duration `yaml:"timeout"`
	CSRFCookie string   `yaml:"csrf_cookie"`
	CSRFHeader string   `yaml:"csrf_header"`
	Token      string   `yaml:"token,omitempty"` // sent when the solver never sets the cookie
}

// NotificationConfig controls status message display
type NotificationConfig struct {
	Duration Duration `yaml:"duration"`
}

// JournalConfig holds solve journal settings
type JournalConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
