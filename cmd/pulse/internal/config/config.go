// Package config loads and saves pulse.yml project configuration.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the pulse.yml configuration.
type Config struct {
	// SrcDir is the directory scanned for .pulse files
	SrcDir string `yaml:"srcDir,omitempty"`

	// OutDir receives the generated .js (and .js.map) files
	OutDir string `yaml:"outDir,omitempty"`

	// Runtime is the module specifier emitted in import statements
	Runtime string `yaml:"runtime,omitempty"`

	// SourceMap enables .js.map emission
	SourceMap bool `yaml:"sourceMap"`

	// ScopeStyles controls component style scoping; nil means enabled
	ScopeStyles *bool `yaml:"scopeStyles,omitempty"`

	// Dev holds development server configuration
	Dev *DevConfig `yaml:"dev,omitempty"`
}

// DevConfig contains development server configuration.
type DevConfig struct {
	// Server port
	Port int `yaml:"port,omitempty"`

	// Server host
	Host string `yaml:"host,omitempty"`

	// Static directory served alongside compiled output
	StaticDir string `yaml:"staticDir,omitempty"`
}

// Load loads configuration from pulse.yml in the given project directory.
// A missing file yields the default configuration.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, "pulse.yml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// Save writes configuration to pulse.yml.
func Save(config *Config, projectPath string) error {
	configPath := filepath.Join(projectPath, "pulse.yml")

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	scoped := true
	return &Config{
		SrcDir:      "src",
		OutDir:      "dist",
		Runtime:     "@pulse/runtime",
		SourceMap:   false,
		ScopeStyles: &scoped,
		Dev: &DevConfig{
			Port:      5173,
			Host:      "localhost",
			StaticDir: "public",
		},
	}
}

// Scoped reports whether style scoping is enabled.
func (c *Config) Scoped() bool {
	return c.ScopeStyles == nil || *c.ScopeStyles
}

// applyDefaults applies default values to missing configuration.
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.SrcDir == "" {
		config.SrcDir = defaults.SrcDir
	}
	if config.OutDir == "" {
		config.OutDir = defaults.OutDir
	}
	if config.Runtime == "" {
		config.Runtime = defaults.Runtime
	}

	if config.Dev == nil {
		config.Dev = defaults.Dev
	} else {
		if config.Dev.Port == 0 {
			config.Dev.Port = defaults.Dev.Port
		}
		if config.Dev.Host == "" {
			config.Dev.Host = defaults.Dev.Host
		}
		if config.Dev.StaticDir == "" {
			config.Dev.StaticDir = defaults.Dev.StaticDir
		}
	}
}
