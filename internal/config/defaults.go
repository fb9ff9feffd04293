package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

const (
	DefaultConfiguration = "Debug"
	DefaultDebounce      = 300 * time.Millisecond
	DefaultConcurrency   = 4
)

// DefaultHistoryPath is the history database under the XDG data directory.
func DefaultHistoryPath() string {
	return filepath.Join(xdg.DataHome, "runbuild", "history.db")
}

// DefaultPackagesRoot is the per-user package cache.
func DefaultPackagesRoot() string {
	return filepath.Join(xdg.Home, ".nuget", "packages")
}

func (c *Config) applyDefaults() error {
	if c.Configuration == "" {
		c.Configuration = DefaultConfiguration
	}
	if c.PackagesRoot == "" {
		c.PackagesRoot = DefaultPackagesRoot()
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath()
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}

	level, err := LogLevelNormalizer.NormalizeWithError(string(c.Log.Level))
	if err != nil {
		return errors.ConfigError("invalid log.level").WithCause(err).Build()
	}
	c.Log.Level = level
	format, err := LogFormatNormalizer.NormalizeWithError(string(c.Log.Format))
	if err != nil {
		return errors.ConfigError("invalid log.format").WithCause(err).Build()
	}
	c.Log.Format = format
	return nil
}
