package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "FLUIDNET_CONFIG"
	// ConfigFileName is looked for in the working directory
	ConfigFileName = "fluidnet.yaml"
	// ConfigDirName is the per-user and system config directory name
	ConfigDirName = "fluidnet"
)

// searchPaths lists config file candidates, highest priority first:
// $FLUIDNET_CONFIG, ./fluidnet.yaml, $XDG_CONFIG_HOME/fluidnet/config.yaml,
// ~/.config/fluidnet/config.yaml, /etc/fluidnet/config.yaml
func searchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// userConfigDir is $XDG_CONFIG_HOME, else ~/.config, else ""
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config")
	}
	return ""
}

// FindConfigPath returns the first existing candidate from searchPaths, or
// "" when there is none
func FindConfigPath() string {
	for _, p := range searchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// DefaultConfigPath is where `config init` writes when given no path
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, ConfigDirName, "config.yaml")
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory that will hold configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}
