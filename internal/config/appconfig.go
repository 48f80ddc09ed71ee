// Package config handles the two configuration surfaces: the per-user
// application defaults under the home directory, and YAML job files that
// describe a complete nesting job.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/sheetnest/internal/model"
)

// AppConfig holds per-user defaults applied when a job file leaves a field
// unset.
type AppConfig struct {
	DefaultSheet    model.SheetDefinition `json:"default_sheet"`
	DefaultSettings model.Settings        `json:"default_settings"`
	RecentJobs      []string              `json:"recent_jobs"`
}

// DefaultAppConfig returns the out-of-the-box configuration: a standard
// 1220x2440 mm sheet and the stock nesting settings.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultSheet: model.NewSheetDefinition("Standard 1220x2440", 1220, 2440, 10),
		DefaultSettings: model.DefaultSettings(),
		RecentJobs:      []string{},
	}
}

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.sheetnest/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sheetnest")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAppConfig(), nil
		}
		return AppConfig{}, err
	}
	var config AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return AppConfig{}, err
	}
	// Ensure RecentJobs is never nil
	if config.RecentJobs == nil {
		config.RecentJobs = []string{}
	}
	return config, nil
}

// AddRecentJob prepends a job path to the recent list, deduplicating and
// keeping at most ten entries.
func (c *AppConfig) AddRecentJob(path string) {
	recent := []string{path}
	for _, p := range c.RecentJobs {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > 10 {
		recent = recent[:10]
	}
	c.RecentJobs = recent
}
