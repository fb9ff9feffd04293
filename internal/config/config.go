// Package config loads runbuild.yaml, the optional file that sets build
// defaults shared by every command.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// DefaultFileName is the config file looked up when none is given.
const DefaultFileName = "runbuild.yaml"

// Config represents the application configuration.
type Config struct {
	// Configuration is the build configuration name (Debug, Release).
	Configuration string `yaml:"configuration"`
	// BuildBasePath redirects build output away from project directories.
	BuildBasePath string `yaml:"build_base_path,omitempty"`
	// SolutionRoot is remapped onto BuildBasePath to mirror the solution layout.
	SolutionRoot string `yaml:"solution_root,omitempty"`
	// PackagesRoot anchors package assets listed in lock files.
	PackagesRoot string `yaml:"packages_root,omitempty"`

	Host        HostConfig     `yaml:"host"`
	Compiler    CompilerConfig `yaml:"compiler"`
	History     HistoryConfig  `yaml:"history"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Log         LogConfig      `yaml:"log"`
	Watch       WatchConfig    `yaml:"watch"`
	Concurrency int            `yaml:"concurrency"`
}

// HostConfig locates native host binaries for hosted targets.
type HostConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// CompilerConfig is the external compiler command.
type CompilerConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// HistoryConfig controls the build history database.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// IsEnabled defaults to true.
func (h HistoryConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	// Debounce coalesces bursts of file events.
	Debounce time.Duration `yaml:"debounce"`
	// Interval re-checks the gate periodically; zero disables it.
	Interval time.Duration `yaml:"interval"`
}

// Load reads the configuration at path. A missing file yields the defaults.
// Before parsing, .env.local and .env next to the file are loaded into the
// environment (existing variables win) and ${VAR} references are expanded.
// RUNBUILD_* variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}
	if err := loadEnvFiles(path); err != nil {
		return nil, err
	}

	cfg := &Config{}
	// #nosec G304 - config path is supplied by the user
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.ConfigError("failed to parse configuration").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
	case os.IsNotExist(err):
		// optional
	default:
		return nil, errors.ConfigError("failed to read configuration").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file exists and no
// environment overrides apply.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}
