package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	appName       = "bananaboard"
	localFileName = ".bananaboardrc"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil // No config file found, return defaults
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, localFileName)
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	for _, name := range []string{"config.rc", appName + ".rc"} {
		if p, err := xdg.SearchConfigFile(filepath.Join(appName, name)); err == nil {
			return p
		}
	}
	return ""
}

// SavePath returns where Save writes: the override path when set, otherwise
// the XDG config file, creating its directory.
func (l *Loader) SavePath() (string, error) {
	if l.OverridePath != "" {
		return l.OverridePath, nil
	}
	return xdg.ConfigFile(filepath.Join(appName, "config.rc"))
}

// Save writes cfg in RC format and returns the path written.
func (l *Loader) Save(cfg *Config) (string, error) {
	path, err := l.SavePath()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
